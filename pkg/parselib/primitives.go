package parselib

// AcceptAny accepts the first element of the input, whatever it is.
func AcceptAny[S any, E comparable]() Parser[E, S, E] {
	return NewParser(func(state S, in Cursor[E]) (Result[E, S, E], error) {
		if in.Empty() {
			return Result[E, S, E]{}, NoMatch(in)
		}
		return Result[E, S, E]{Value: in.Front(), State: state, Rest: in.Advance(1)}, nil
	})
}

// AcceptCondition accepts the first element if cond holds for it. A rejected element
// is reported against the entry cursor, so the failure stays clean.
func AcceptCondition[S any, E comparable](cond func(E) bool) Parser[E, S, E] {
	first := AcceptAny[S, E]()
	return NewParser(func(state S, in Cursor[E]) (Result[E, S, E], error) {
		res, err := first.Parse(state, in)
		if err != nil {
			return res, err
		}
		if !cond(res.Value) {
			return Result[E, S, E]{}, NoMatch(in)
		}
		return res, nil
	})
}

// AcceptSpecific accepts the first element if it equals want.
func AcceptSpecific[S any, E comparable](want E) Parser[E, S, E] {
	return AcceptCondition[S](func(e E) bool { return e == want })
}

// AcceptType accepts the first element if its dynamic type is T.
func AcceptType[T any, S any, E comparable]() Parser[E, S, E] {
	return AcceptCondition[S](func(e E) bool {
		_, ok := any(e).(T)
		return ok
	})
}

// AcceptSpecificMulti accepts the elements of want in order. Failures pass through
// unchanged, so a mismatch after a partial match is clean but reports the cursor at the
// mismatching element. A commit-on-consume parser around it will therefore commit; wrap
// that parser in Attempt where the literal must stay retryable.
func AcceptSpecificMulti[S any, E comparable](want []E) Parser[[]E, S, E] {
	parts := make([]Parser[E, S, E], len(want))
	for i, e := range want {
		parts[i] = AcceptSpecific[S](e)
	}
	return NewBacktrackParser(func(state S, in Cursor[E]) (Result[[]E, S, E], error) {
		results := make([]E, 0, len(parts))
		cur := in
		for _, p := range parts {
			res, err := p.Parse(state, cur)
			if err != nil {
				return Result[[]E, S, E]{}, err
			}
			results = append(results, res.Value)
			state, cur = res.State, res.Rest
		}
		return Result[[]E, S, E]{Value: results, State: state, Rest: cur}, nil
	})
}

// AcceptInputCondition accepts one element if cond holds for the whole remaining input.
// It is useful for negative lookahead such as "not at the closing delimiter".
func AcceptInputCondition[S any, E comparable](cond func(Cursor[E]) bool) Parser[E, S, E] {
	first := AcceptAny[S, E]()
	return NewParser(func(state S, in Cursor[E]) (Result[E, S, E], error) {
		if !cond(in) {
			return Result[E, S, E]{}, NoMatch(in)
		}
		return first.Parse(state, in)
	})
}

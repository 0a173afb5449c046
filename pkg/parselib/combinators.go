package parselib

// Many applies p as many times as possible and collects the results.
//
// Repetition stops at the end of input or when p fails cleanly. A committed failure
// from p is returned as is, discarding the repetitions matched so far. If p succeeds
// without consuming anything Many panics with ZeroProgressError.
func Many[V any, S any, E comparable](p Parser[V, S, E]) Parser[[]V, S, E] {
	return NewParser(func(state S, in Cursor[E]) (Result[[]V, S, E], error) {
		results := []V{}
		cur := in
		for !cur.Empty() {
			res, err := p.Parse(state, cur)
			if err != nil {
				if f, ok := err.(*Failure[E]); ok && f.Kind == Clean {
					break
				}
				return Result[[]V, S, E]{}, err
			}
			if res.Rest.Equal(cur) {
				panic(ZeroProgressError{Offset: cur.Offset()})
			}
			results = append(results, res.Value)
			state, cur = res.State, res.Rest
		}
		return Result[[]V, S, E]{Value: results, State: state, Rest: cur}, nil
	})
}

// Many1 is like Many but requires at least one match.
func Many1[V any, S any, E comparable](p Parser[V, S, E]) Parser[[]V, S, E] {
	rest := Many(p)
	return NewParser(func(state S, in Cursor[E]) (Result[[]V, S, E], error) {
		first, err := p.Parse(state, in)
		if err != nil {
			return Result[[]V, S, E]{}, err
		}
		more, err := rest.Parse(first.State, first.Rest)
		if err != nil {
			return Result[[]V, S, E]{}, err
		}
		results := make([]V, 0, len(more.Value)+1)
		results = append(results, first.Value)
		results = append(results, more.Value...)
		return Result[[]V, S, E]{Value: results, State: more.State, Rest: more.Rest}, nil
	})
}

// Choice tries each alternative in order against the same input and returns the
// first success. Only clean failures move on to the next alternative.
func Choice[V any, S any, E comparable](alternatives ...Parser[V, S, E]) Parser[V, S, E] {
	return NewParser(func(state S, in Cursor[E]) (Result[V, S, E], error) {
		for _, p := range alternatives {
			res, err := p.Parse(state, in)
			if err == nil {
				return res, nil
			}
			if f, ok := err.(*Failure[E]); !ok || f.Kind != Clean {
				return Result[V, S, E]{}, err
			}
		}
		return Result[V, S, E]{}, NoMatch(in)
	})
}

// Map applies fn to the value produced by p.
func Map[V any, W any, S any, E comparable](p Parser[V, S, E], fn func(V) W) Parser[W, S, E] {
	return NewParser(func(state S, in Cursor[E]) (Result[W, S, E], error) {
		res, err := p.Parse(state, in)
		if err != nil {
			return Result[W, S, E]{}, err
		}
		return Result[W, S, E]{Value: fn(res.Value), State: res.State, Rest: res.Rest}, nil
	})
}

// Replace discards the value produced by p and yields value instead.
func Replace[V any, W any, S any, E comparable](p Parser[V, S, E], value W) Parser[W, S, E] {
	return Map(p, func(V) W { return value })
}

package parselib

// RunFirst runs p once and returns its value, ignoring any input left over.
func RunFirst[V any, S any, E comparable](p Parser[V, S, E], in Cursor[E], state S) (V, error) {
	res, err := p.Parse(state, in)
	if err != nil {
		var zero V
		return zero, err
	}
	return res.Value, nil
}

// RunAll runs p once and requires it to consume the whole input.
func RunAll[V any, S any, E comparable](p Parser[V, S, E], in Cursor[E], state S) (V, error) {
	var zero V
	res, err := p.Parse(state, in)
	if err != nil {
		return zero, err
	}
	if !res.Rest.Empty() {
		return zero, &Failure[E]{Kind: Leftover, Remaining: res.Rest}
	}
	return res.Value, nil
}

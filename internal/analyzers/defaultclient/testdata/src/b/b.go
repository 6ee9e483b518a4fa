package b

type fake struct{}

func (fake) Get(string) error { return nil }

var http fake

func shadowed() {
	_ = http.Get("x")
}

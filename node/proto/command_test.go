package proto

import "testing"

func TestButtonCommand(t *testing.T) {
	for i, want := range []Command{Command0, Command1, Command2} {
		got, ok := ButtonCommand(i)
		if !ok || got != want {
			t.Fatalf("ButtonCommand(%d) = (%v, %t), want (%v, true)", i, got, ok, want)
		}
		if !got.Valid() {
			t.Fatalf("%v.Valid() = false", got)
		}
	}
	if _, ok := ButtonCommand(CommandCount); ok {
		t.Fatal("ButtonCommand(3) ok, want false")
	}
	if Command(7).Valid() {
		t.Fatal("Command(7).Valid() = true")
	}
	if got := Command1.String(); got != "COMMAND1" {
		t.Fatalf("String() = %q, want COMMAND1", got)
	}
}

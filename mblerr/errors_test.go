package mblerr

import "testing"

func TestErrorKindsAreDistinguishable(t *testing.T) {
	cases := []struct {
		err  interface{ Kind() ErrorKind }
		want ErrorKind
	}{
		{&SchemaError{Line: 1, Msg: "bad"}, KindSchema},
		{&ResourceError{Msg: "oom"}, KindResource},
		{&SerialError{Msg: "truncated"}, KindSerial},
		{&MetricLockedError{Feature: 2}, KindMetricLocked},
	}
	for _, c := range cases {
		if got := c.err.Kind(); got != c.want {
			t.Fatalf("Kind() = %v, want %v", got, c.want)
		}
	}
}

func TestErrorMessagesIncludeContext(t *testing.T) {
	err := &SchemaError{Line: 5, Msg: "wrong number of fields"}
	if got := err.Error(); got == "" {
		t.Fatalf("Error() returned an empty string")
	}
}

func TestErrorKindStringNames(t *testing.T) {
	if KindSchema.String() != "SchemaError" {
		t.Fatalf("KindSchema.String() = %q, want %q", KindSchema.String(), "SchemaError")
	}
}

func TestWarningStringIncludesLineWhenSet(t *testing.T) {
	w := Warning{Line: 3, Msg: "skipped"}
	if got := w.String(); got != "line 3: skipped" {
		t.Fatalf("Warning.String() = %q, want %q", got, "line 3: skipped")
	}

	w2 := Warning{Msg: "generic"}
	if got := w2.String(); got != "generic" {
		t.Fatalf("Warning{Line:0}.String() = %q, want %q", got, "generic")
	}
}

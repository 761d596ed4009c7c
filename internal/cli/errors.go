package cli

import "fmt"

type notSignedInError struct{}

func (notSignedInError) Error() string {
	return "not signed in; run `taskdeck login` first"
}

func errNotSignedIn() error {
	return notSignedInError{}
}

type invalidIDError struct {
	kind string
	raw  string
}

func (e invalidIDError) Error() string {
	return fmt.Sprintf("invalid %s id: %q", e.kind, e.raw)
}

func errInvalidID(kind, raw string) error {
	return invalidIDError{kind: kind, raw: raw}
}

type noChangesError struct {
	kind string
}

func (e noChangesError) Error() string {
	return fmt.Sprintf("no %s fields to update; pass at least one flag", e.kind)
}

func errNoChanges(kind string) error {
	return noChangesError{kind: kind}
}

type invalidValueError struct {
	flag  string
	value string
	want  string
}

func (e invalidValueError) Error() string {
	return fmt.Sprintf("invalid --%s %q (want %s)", e.flag, e.value, e.want)
}

func errInvalidValue(flag, value, want string) error {
	return invalidValueError{flag: flag, value: value, want: want}
}

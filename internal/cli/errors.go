package cli

import "fmt"

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type adminOnlyError struct {
	area string
}

func (e adminOnlyError) Error() string {
	return fmt.Sprintf("permission denied: %s are only available to admins", e.area)
}

func errAdminOnly(area string) error {
	return adminOnlyError{area: area}
}

type invalidIDError struct {
	kind  string
	value string
}

func (e invalidIDError) Error() string {
	return fmt.Sprintf("invalid %s id: %q", e.kind, e.value)
}

func errInvalidID(kind, value string) error {
	return invalidIDError{kind: kind, value: value}
}

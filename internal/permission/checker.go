package permission

// Checker reports whether the platform currently holds a permission.
type Checker interface {
	Granted(permission string) (bool, error)
}

// WasGranted reports whether permission is held. Checker errors count as not granted.
func WasGranted(c Checker, permission string) bool {
	ok, err := c.Granted(permission)
	return err == nil && ok
}

// WasNotGranted is the negation of WasGranted.
func WasNotGranted(c Checker, permission string) bool {
	return !WasGranted(c, permission)
}

// StaticChecker answers from a fixed set of granted permissions.
type StaticChecker map[string]bool

func (s StaticChecker) Granted(permission string) (bool, error) {
	return s[permission], nil
}

package emberforge

import "fmt"

// wrapf wraps err with a context string, matching anyhow's .context(...)
// convention in the reference source. Returns nil if err is nil.
func wrapf(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

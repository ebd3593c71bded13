package handler

// UserError is an error type that is used to represent
// an error that should be displayed to the user.
type UserError struct {
	Message string
	// Reply answers the invoking message instead of posting to the channel.
	Reply bool
}

func (e *UserError) Error() string {
	return e.Message
}

var _ error = (*UserError)(nil)

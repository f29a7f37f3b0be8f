package handles

// HandlesGetOutput for GET /handles
type HandlesGetOutput struct {
	Body HandleSet
}

// HandlesUpdateOutput for PATCH /handles
type HandlesUpdateOutput struct {
	Body HandleSet
}

package handles

// HandlesGetInput for GET /handles (no body needed)
type HandlesGetInput struct{}

// HandlesUpdateInput for PATCH /handles
type HandlesUpdateInput struct {
	Body struct {
		Handles map[string]string `json:"handles" required:"true" doc:"Handles to set; an empty string removes the platform" example:"{\"codeforces\":\"alice_cf\",\"atcoder\":\"\"}"`
	}
}

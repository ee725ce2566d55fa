package transport

import "github.com/valyala/fasthttp"

// AddTaskRequest is the JSON body of POST /add. Optional fields may be null.
type AddTaskRequest struct {
	Title   string  `json:"title"`
	DueDate *string `json:"due_date"`
	Note    *string `json:"note"`
}

// CredentialsForm holds the register/login form fields.
type CredentialsForm struct {
	Username string
	Password string
}

// ParseCredentials reads username and password from an urlencoded or multipart form.
func ParseCredentials(ctx *fasthttp.RequestCtx) CredentialsForm {
	return CredentialsForm{
		Username: string(ctx.FormValue("username")),
		Password: string(ctx.FormValue("password")),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Fields returns the raw title, due date and note with nulls collapsed to "".
func (r AddTaskRequest) Fields() (title, dueDate, note string) {
	return r.Title, deref(r.DueDate), deref(r.Note)
}

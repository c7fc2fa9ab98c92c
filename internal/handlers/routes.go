package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the account and short link routes.
func RegisterRoutes(api huma.API, auth *AuthHandler, links *LinkHandler) {
	registerAuthRoutes(api, auth)
	registerLinkRoutes(api, links)
}

func registerAuthRoutes(api huma.API, h *AuthHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/register",
		Summary:       "Register",
		Description:   "Creates an account and logs it in.",
		Tags:          []string{"Accounts"},
		DefaultStatus: http.StatusCreated,
	}, h.Register)

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/login",
		Summary:     "Log in",
		Tags:        []string{"Accounts"},
	}, h.Login)

	huma.Register(api, huma.Operation{
		OperationID:   "logout",
		Method:        http.MethodPost,
		Path:          "/logout",
		Summary:       "Log out",
		Tags:          []string{"Accounts"},
		DefaultStatus: http.StatusNoContent,
	}, h.Logout)

	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Current user",
		Tags:        []string{"Accounts"},
	}, h.Me)
}

func registerLinkRoutes(api huma.API, h *LinkHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-link",
		Method:        http.MethodPost,
		Path:          "/urls",
		Summary:       "Create short URL",
		Description:   "Creates a short link owned by the caller.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
	}, h.CreateLink)

	huma.Register(api, huma.Operation{
		OperationID: "list-links",
		Method:      http.MethodGet,
		Path:        "/urls",
		Summary:     "List own short URLs",
		Tags:        []string{"URLs"},
	}, h.ListLinks)

	huma.Register(api, huma.Operation{
		OperationID: "get-link",
		Method:      http.MethodGet,
		Path:        "/urls/{code}",
		Summary:     "Get short URL",
		Tags:        []string{"URLs"},
	}, h.GetLink)

	for _, op := range []struct{ id, method string }{
		{"update-link", http.MethodPut},
		{"update-link-form", http.MethodPost},
	} {
		huma.Register(api, huma.Operation{
			OperationID:   op.id,
			Method:        op.method,
			Path:          "/urls/{code}",
			Summary:       "Change short URL destination",
			Tags:          []string{"URLs"},
			DefaultStatus: http.StatusNoContent,
		}, h.UpdateLink)
	}

	huma.Register(api, huma.Operation{
		OperationID:   "delete-link",
		Method:        http.MethodDelete,
		Path:          "/urls/{code}",
		Summary:       "Delete short URL",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusNoContent,
	}, h.DeleteLink)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-link-form",
		Method:        http.MethodPost,
		Path:          "/urls/{code}/delete",
		Summary:       "Delete short URL",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusNoContent,
	}, h.DeleteLink)

	huma.Register(api, huma.Operation{
		OperationID:   "redirect",
		Method:        http.MethodGet,
		Path:          "/u/{code}",
		Summary:       "Redirect to original URL",
		Description:   "Redirects to the destination of the short code. No session is needed.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusFound,
	}, h.Redirect)
}

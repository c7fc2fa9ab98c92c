package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlinks/internal/access"
	"github.com/serroba/shortlinks/internal/shortener"
	"go.uber.org/zap"
)

// LinkHandler handles short link operations.
type LinkHandler struct {
	controller *access.Controller
	baseURL    string
	logger     *zap.Logger
}

// NewLinkHandler creates a LinkHandler. Short URLs are built on baseURL.
func NewLinkHandler(controller *access.Controller, baseURL string, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{
		controller: controller,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

func (h *LinkHandler) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error) {
	token, err := h.controller.SelectToken(ctx, req.Candidates()...)
	if err != nil {
		return nil, toHTTPError(h.logger, "create link", err)
	}

	link, err := h.controller.CreateLink(ctx, token, req.Body.URL)
	if err != nil {
		return nil, toHTTPError(h.logger, "create link", err)
	}

	body := h.toLinkBody(link)

	return &CreateLinkResponse{Location: body.ShortURL, Body: body}, nil
}

func (h *LinkHandler) ListLinks(ctx context.Context, req *SessionRequest) (*ListLinksResponse, error) {
	token, err := h.controller.SelectToken(ctx, req.Candidates()...)
	if err != nil {
		return nil, toHTTPError(h.logger, "list links", err)
	}

	user, links, err := h.controller.OwnLinks(ctx, token)
	if err != nil {
		return nil, toHTTPError(h.logger, "list links", err)
	}

	if user == nil {
		return nil, huma.Error401Unauthorized(shortener.ErrUnauthorized.Error())
	}

	resp := &ListLinksResponse{}
	resp.Body.Owner = user.Email
	resp.Body.Links = make([]LinkBody, 0, len(links))

	for i := range links {
		resp.Body.Links = append(resp.Body.Links, h.toLinkBody(&links[i]))
	}

	return resp, nil
}

func (h *LinkHandler) GetLink(ctx context.Context, req *LinkRequest) (*LinkResponse, error) {
	token, err := h.controller.SelectToken(ctx, req.Candidates()...)
	if err != nil {
		return nil, toHTTPError(h.logger, "get link", err)
	}

	link, err := h.controller.GetLink(ctx, token, shortener.Code(req.Code))
	if err != nil {
		return nil, toHTTPError(h.logger, "get link", err)
	}

	return &LinkResponse{Body: h.toLinkBody(link)}, nil
}

func (h *LinkHandler) UpdateLink(ctx context.Context, req *UpdateLinkRequest) (*struct{}, error) {
	token, err := h.controller.SelectToken(ctx, req.Candidates()...)
	if err != nil {
		return nil, toHTTPError(h.logger, "update link", err)
	}

	if err := h.controller.UpdateLink(ctx, token, shortener.Code(req.Code), req.Body.URL); err != nil {
		return nil, toHTTPError(h.logger, "update link", err)
	}

	return nil, nil
}

func (h *LinkHandler) DeleteLink(ctx context.Context, req *LinkRequest) (*struct{}, error) {
	token, err := h.controller.SelectToken(ctx, req.Candidates()...)
	if err != nil {
		return nil, toHTTPError(h.logger, "delete link", err)
	}

	if err := h.controller.DeleteLink(ctx, token, shortener.Code(req.Code)); err != nil {
		return nil, toHTTPError(h.logger, "delete link", err)
	}

	return nil, nil
}

func (h *LinkHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	longURL, err := h.controller.ResolveLink(ctx, shortener.Code(req.Code))
	if err != nil {
		return nil, toHTTPError(h.logger, "redirect", err)
	}

	// 302: the owner may still change the destination.
	return &RedirectResponse{Status: http.StatusFound, Location: longURL}, nil
}

func (h *LinkHandler) toLinkBody(link *shortener.ShortLink) LinkBody {
	return LinkBody{
		Code:      string(link.Code),
		ShortURL:  h.baseURL + "/u/" + string(link.Code),
		LongURL:   link.LongURL,
		CreatedAt: link.CreatedAt,
	}
}

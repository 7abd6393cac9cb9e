package http

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"certificate-generator/internal/compose"
	"certificate-generator/internal/domain"
	"certificate-generator/internal/model"
	"certificate-generator/internal/usecase"
)

// genericFailure is all a client learns about a failed render; they retry
// the whole request.
const genericFailure = "could not generate certificate"

type Generator interface {
	Generate(ctx context.Context, data domain.CertificateData) (*domain.RenderedDocument, error)
	Preview(data domain.CertificateData) (*compose.Document, error)
	Templates() []compose.Template
	Brand() string
}

type Handler struct {
	gen     Generator
	source  usecase.CertificateSource
	baseURL string
	logger  *zap.Logger
}

func NewHandler(g Generator, source usecase.CertificateSource, baseURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{gen: g, source: source, baseURL: baseURL, logger: logger}
}

func (h *Handler) Register(r fiber.Router) {
	r.Get("/healthz", h.Health)
	r.Get("/certificates/templates", h.Templates)
	r.Post("/certificates", h.Render)
	r.Post("/certificates/preview", h.Preview)
	r.Post("/certificates/share", h.Share)
	r.Post("/applications/:id/certificates", h.AssignURLs)
	r.Get("/applications/:id/certificate", h.RenderApplication)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) Templates(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"templates": h.gen.Templates()})
}

func (h *Handler) Render(c *fiber.Ctx) error {
	data, err := model.ParseCertificate(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return h.render(c, data)
}

func (h *Handler) Preview(c *fiber.Ctx) error {
	data, err := model.ParseCertificate(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	doc, err := h.gen.Preview(data)
	if err != nil {
		h.logger.Error("preview failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": genericFailure})
	}
	c.Set("X-Certificate-Code", doc.Code)
	c.Set("X-Certificate-Template", string(doc.Style))
	c.Type("html", "utf-8")
	return c.SendString(doc.HTML)
}

type shareReq struct {
	Certificate json.RawMessage `json:"certificate"`
	PageURL     string          `json:"pageUrl"`
}

func (h *Handler) Share(c *fiber.Ctx) error {
	var req shareReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	data, err := model.ParseCertificate(req.Certificate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"text": usecase.ShareText(data, h.gen.Brand()),
		"url":  usecase.LinkedInShareURL(req.PageURL, data, h.gen.Brand()),
	})
}

func (h *Handler) AssignURLs(c *fiber.Ctx) error {
	n, err := h.source.AssignCertificateURLs(c.UserContext(), c.Params("id"), h.baseURL)
	if err != nil {
		return h.sourceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Certificates generated successfully", "count": n})
}

func (h *Handler) RenderApplication(c *fiber.Ctx) error {
	data, err := h.source.LoadCertificate(c.UserContext(), c.Params("id"), c.Query("email"))
	if err != nil {
		return h.sourceError(c, err)
	}
	if err := model.Validate(data); err != nil {
		h.logger.Warn("stored certificate data is invalid",
			zap.String("application", c.Params("id")), zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return h.render(c, data)
}

func (h *Handler) render(c *fiber.Ctx, data domain.CertificateData) error {
	doc, err := h.gen.Generate(c.UserContext(), data)
	if err != nil {
		h.logger.Error("certificate render failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": genericFailure})
	}
	c.Attachment(doc.FileName)
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set("X-Certificate-Code", doc.CertificateCode)
	c.Set("X-Certificate-Blank", strconv.FormatBool(doc.Blank))
	return c.Send(doc.PDF)
}

func (h *Handler) sourceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "application not found"})
	case errors.Is(err, domain.ErrSourceUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "applications database not configured"})
	}
	h.logger.Error("application lookup failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

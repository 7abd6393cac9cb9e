package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"certificate-generator/internal/compose"
	"certificate-generator/internal/domain"
)

// MockGenerator is a mock implementation of the Generator interface
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, data domain.CertificateData) (*domain.RenderedDocument, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenderedDocument), args.Error(1)
}

func (m *MockGenerator) Preview(data domain.CertificateData) (*compose.Document, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*compose.Document), args.Error(1)
}

func (m *MockGenerator) Templates() []compose.Template {
	return compose.DefaultRegistry().List()
}

func (m *MockGenerator) Brand() string { return "Saarthix" }

// MockSource is a mock implementation of usecase.CertificateSource
type MockSource struct {
	mock.Mock
}

func (m *MockSource) LoadCertificate(ctx context.Context, applicationID, email string) (domain.CertificateData, error) {
	args := m.Called(ctx, applicationID, email)
	return args.Get(0).(domain.CertificateData), args.Error(1)
}

func (m *MockSource) AssignCertificateURLs(ctx context.Context, applicationID, baseURL string) (int, error) {
	args := m.Called(ctx, applicationID, baseURL)
	return args.Int(0), args.Error(1)
}

const validBody = `{"participantName":"Jane Doe","hackathonTitle":"Spring Hack 2025","company":"Acme"}`

func newApp(g *MockGenerator, s *MockSource) *fiber.App {
	app := fiber.New()
	NewHandler(g, s, "https://saarthix.com/certificate", nil).Register(app)
	return app
}

func postJSON(path, body string) *nethttp.Request {
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func TestRenderReturnsPDF(t *testing.T) {
	g := &MockGenerator{}
	g.On("Generate", mock.Anything, mock.MatchedBy(func(d domain.CertificateData) bool {
		return d.ParticipantName == "Jane Doe"
	})).Return(&domain.RenderedDocument{
		PDF:             []byte("%PDF-1.3 test"),
		FileName:        "Saarthix_Spring_Hack_2025_Jane_Doe_Certificate.pdf",
		CertificateCode: "10/04/2025-123456",
		Blank:           true,
	}, nil)

	resp, err := newApp(g, &MockSource{}).Test(postJSON("/certificates", validBody), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "Saarthix_Spring_Hack_2025_Jane_Doe_Certificate.pdf")
	assert.Equal(t, "10/04/2025-123456", resp.Header.Get("X-Certificate-Code"))
	assert.Equal(t, "true", resp.Header.Get("X-Certificate-Blank"))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-1.3 test", string(body))
	g.AssertExpectations(t)
}

func TestRenderRejectsInvalidPayload(t *testing.T) {
	g := &MockGenerator{}
	resp, err := newApp(g, &MockSource{}).Test(postJSON("/certificates", `{"participantName":"Jane"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	g.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestRenderFailureIsGeneric(t *testing.T) {
	g := &MockGenerator{}
	g.On("Generate", mock.Anything, mock.Anything).Return(nil, domain.ErrRasterizationFailure)

	resp, err := newApp(g, &MockSource{}).Test(postJSON("/certificates", validBody), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "could not generate certificate", out["error"])
}

func TestPreviewReturnsHTML(t *testing.T) {
	g := &MockGenerator{}
	g.On("Preview", mock.Anything).Return(&compose.Document{HTML: "<html>ok</html>", Code: "C-1", Style: domain.Template2}, nil)

	resp, err := newApp(g, &MockSource{}).Test(postJSON("/certificates/preview", validBody), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")
	assert.Equal(t, "template2", resp.Header.Get("X-Certificate-Template"))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "<html>ok</html>", string(body))
}

func TestTemplatesList(t *testing.T) {
	resp, err := newApp(&MockGenerator{}, &MockSource{}).Test(httptest.NewRequest(fiber.MethodGet, "/certificates/templates", nil), -1)
	require.NoError(t, err)

	var out struct {
		Templates []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"templates"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Templates, 4)
	assert.Equal(t, "template1", out.Templates[0].ID)
	assert.Equal(t, "Minimal Achievement", out.Templates[1].Name)
}

func TestShare(t *testing.T) {
	body := `{"certificate":` + validBody + `,"pageUrl":"https://saarthix.com/hackathons/7"}`
	resp, err := newApp(&MockGenerator{}, &MockSource{}).Test(postJSON("/certificates/share", body), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out["text"], "participated in Spring Hack 2025 organized by Acme via Saarthix")
	u, err := url.Parse(out["url"])
	require.NoError(t, err)
	assert.Equal(t, "https://saarthix.com/hackathons/7", u.Query().Get("url"))
}

func TestAssignURLs(t *testing.T) {
	s := &MockSource{}
	s.On("AssignCertificateURLs", mock.Anything, "app-7", "https://saarthix.com/certificate").Return(3, nil)

	resp, err := newApp(&MockGenerator{}, s).Test(postJSON("/applications/app-7/certificates", ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	s.AssertExpectations(t)
}

func TestRenderApplication(t *testing.T) {
	data := domain.CertificateData{ParticipantName: "Dev One", TeamName: "Byte Busters", HackathonTitle: "Spring Hack", Company: "Acme"}
	s := &MockSource{}
	s.On("LoadCertificate", mock.Anything, "app-7", "dev@x.io").Return(data, nil)
	g := &MockGenerator{}
	g.On("Generate", mock.Anything, data).Return(&domain.RenderedDocument{PDF: []byte("%PDF"), FileName: "x.pdf"}, nil)

	req := httptest.NewRequest(fiber.MethodGet, "/applications/app-7/certificate?email=dev%40x.io", nil)
	resp, err := newApp(g, s).Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "false", resp.Header.Get("X-Certificate-Blank"))
	g.AssertExpectations(t)
}

func TestRenderApplicationRejectsInvalidStoredData(t *testing.T) {
	data := domain.CertificateData{IsTeam: true, HackathonTitle: "Spring Hack", Company: "Acme"}
	s := &MockSource{}
	s.On("LoadCertificate", mock.Anything, "app-9", "").Return(data, nil)
	g := &MockGenerator{}

	resp, err := newApp(g, s).Test(httptest.NewRequest(fiber.MethodGet, "/applications/app-9/certificate", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	g.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestSourceErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrNotFound, fiber.StatusNotFound},
		{domain.ErrSourceUnavailable, fiber.StatusServiceUnavailable},
		{errors.New("connection reset"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		s := &MockSource{}
		s.On("LoadCertificate", mock.Anything, "app-1", "").Return(domain.CertificateData{}, tc.err)

		resp, err := newApp(&MockGenerator{}, s).Test(httptest.NewRequest(fiber.MethodGet, "/applications/app-1/certificate", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
	}
}

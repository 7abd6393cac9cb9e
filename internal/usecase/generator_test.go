package usecase

import (
	"context"
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certificate-generator/internal/compose"
	"certificate-generator/internal/domain"
)

const testScale = 0.25

func newTestGenerator(host RenderHost, s Serializer) *Generator {
	composer := compose.NewComposer(compose.DefaultRegistry(), "Saarthix", func() time.Time {
		return time.Date(2025, time.April, 10, 9, 0, 0, 0, time.UTC)
	})
	return NewGenerator(composer, host, s, GeneratorConfig{
		Barrier: fastBarrier,
		Scale:   testScale,
	}, nil)
}

func janeDoe() domain.CertificateData {
	return domain.CertificateData{
		ParticipantName: "Jane Doe",
		HackathonTitle:  "Spring Hack 2025",
		Company:         "Acme",
	}
}

func TestGenerateProducesDocument(t *testing.T) {
	host := &fakeHost{}
	ser := &fakeSerializer{}
	g := newTestGenerator(host, ser)

	doc, err := g.Generate(context.Background(), janeDoe())
	require.NoError(t, err)

	assert.Equal(t, "Saarthix_Spring_Hack_2025_Jane_Doe_Certificate.pdf", doc.FileName)
	assert.Equal(t, domain.Template1, doc.Template)
	assert.False(t, doc.Blank)
	assert.Contains(t, string(doc.PDF), "%PDF")
	assert.Equal(t, 281, doc.RasterWidth)
	assert.Equal(t, 199, doc.RasterHeight)
	assert.Regexp(t, `^10/04/2025-\d{6}$`, doc.CertificateCode)

	require.NotNil(t, ser.got)
	assert.InDelta(t, 1122.0/794.0, ser.got.Aspect(), 1e-9)
	assert.Equal(t, "Saarthix", ser.meta.Author)
	assert.Equal(t, doc.CertificateCode, ser.meta.Subject)

	assert.Contains(t, host.last.mounted, "Jane Doe")
	assert.Equal(t, 1, host.last.releases)
	assert.Zero(t, host.Attached())
}

func TestGenerateMountFailure(t *testing.T) {
	host := &fakeHost{newSurf: func() *fakeSurface {
		return &fakeSurface{mountErr: errors.New("net::ERR_FILE_NOT_FOUND")}
	}}
	ser := &fakeSerializer{}

	_, err := newTestGenerator(host, ser).Generate(context.Background(), janeDoe())
	assert.ErrorIs(t, err, domain.ErrRenderSurfaceMissing)
	assert.Nil(t, ser.got)
	assert.Equal(t, 1, host.last.releases)
	assert.Zero(t, host.Attached())
}

func TestGenerateCaptureFailure(t *testing.T) {
	host := &fakeHost{newSurf: func() *fakeSurface {
		return &fakeSurface{captureErr: errors.New("target closed")}
	}}

	_, err := newTestGenerator(host, &fakeSerializer{}).Generate(context.Background(), janeDoe())
	assert.ErrorIs(t, err, domain.ErrRasterizationFailure)
	assert.Zero(t, host.Attached())
}

func TestGenerateSizeMismatch(t *testing.T) {
	host := &fakeHost{newSurf: func() *fakeSurface { return &fakeSurface{sizeDelta: 3} }}

	_, err := newTestGenerator(host, &fakeSerializer{}).Generate(context.Background(), janeDoe())
	assert.ErrorIs(t, err, domain.ErrRasterizationFailure)
	assert.Zero(t, host.Attached())
}

func TestGenerateBlankIsAdvisory(t *testing.T) {
	host := &fakeHost{newSurf: func() *fakeSurface { return &fakeSurface{fill: color.White} }}

	doc, err := newTestGenerator(host, &fakeSerializer{}).Generate(context.Background(), janeDoe())
	require.NoError(t, err)
	assert.True(t, doc.Blank)
	assert.NotEmpty(t, doc.PDF)
	assert.Zero(t, host.Attached())
}

func TestGenerateSerializerFailure(t *testing.T) {
	host := &fakeHost{}
	_, err := newTestGenerator(host, &fakeSerializer{err: errors.New("boom")}).Generate(context.Background(), janeDoe())
	assert.Error(t, err)
	assert.Zero(t, host.Attached())
}

func TestGenerateWithPendingImageCompletes(t *testing.T) {
	host := &fakeHost{newSurf: func() *fakeSurface {
		return &fakeSurface{images: []*bool{nil}}
	}}
	data := janeDoe()
	data.LogoURL = "https://unreachable.invalid/logo.png"

	start := time.Now()
	doc, err := newTestGenerator(host, &fakeSerializer{}).Generate(context.Background(), data)
	require.NoError(t, err)
	assert.NotNil(t, doc)
	assert.Less(t, time.Since(start), fastBarrier.MaxWait()+time.Second)
	assert.Zero(t, host.Attached())
}

func TestGenerateCancelledBeforeAcquire(t *testing.T) {
	host := &fakeHost{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestGenerator(host, &fakeSerializer{}).Generate(ctx, janeDoe())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, host.Attached())
}

func TestPreviewDoesNotRender(t *testing.T) {
	host := &fakeHost{}
	data := janeDoe()
	data.TemplateStyle = "template9"

	doc, err := newTestGenerator(host, &fakeSerializer{}).Preview(data)
	require.NoError(t, err)
	assert.Equal(t, domain.Template1, doc.Style)
	assert.Zero(t, host.acquired)
}

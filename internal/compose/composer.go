package compose

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"
	"unicode"

	"certificate-generator/internal/domain"
)

// Document is a fully composed certificate that has not been rasterized yet.
type Document struct {
	Style           domain.TemplateStyle
	TemplateName    string
	Title           string
	HTML            string
	Honoree         string
	AchievementText string
	Code            string
	// Images lists every image source embedded in HTML, in document order.
	Images []string
	Width  int
	Height int
}

// View is the data handed to the layout templates.
type View struct {
	Style           domain.TemplateStyle
	Width           int
	Height          int
	Brand           string
	BrandInitials   string
	PlatformLogo    template.URL
	Company         string
	CompanyInitials string
	CompanyLogo     template.URL
	Title           string
	RankTitle       string
	Rank            int
	Winner          bool
	Honoree         string
	Subline         string
	AchievementText string
	Left            SignatureView
	Right           SignatureView
	Date            string
	Code            string
}

type SignatureView struct {
	Name  string
	Title string
	Image template.URL
}

// Composer turns CertificateData into a Document using the registry's
// layouts.
type Composer struct {
	registry *Registry
	codes    *CodeGenerator
	brand    string
	now      func() time.Time
}

func NewComposer(registry *Registry, brand string, now func() time.Time) *Composer {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if now == nil {
		now = time.Now
	}
	return &Composer{registry: registry, codes: NewCodeGenerator(now), brand: brand, now: now}
}

func (c *Composer) Registry() *Registry { return c.registry }

func (c *Composer) Brand() string { return c.brand }

// Compose normalizes data and renders the selected layout.
func (c *Composer) Compose(data domain.CertificateData) (*Document, error) {
	d := data.Normalize(c.brand, c.now())
	tpl := c.registry.Lookup(d.TemplateStyle)

	text := AchievementText(d.Rank, d.HackathonTitle, d.Date)
	if tpl.HonorsCustomMessage() && strings.TrimSpace(d.CustomMessage) != "" {
		text = strings.TrimSpace(d.CustomMessage)
	}

	code := strings.TrimSpace(d.CertificateCode)
	if code == "" {
		code = c.codes.Generate()
	}

	v := View{
		Style:           tpl.Style,
		Width:           LogicalWidth,
		Height:          LogicalHeight,
		Brand:           c.brand,
		BrandInitials:   Initials(c.brand),
		PlatformLogo:    imageURL(d.PlatformLogoURL),
		Company:         d.Company,
		CompanyInitials: Initials(d.Company),
		CompanyLogo:     imageURL(d.LogoURL),
		Title:           d.CertificateType,
		RankTitle:       d.RankTitle,
		Honoree:         d.Honoree(),
		Subline:         subline(d),
		AchievementText: text,
		Left: SignatureView{
			Name:  d.SignerLeft.Name,
			Title: d.SignerLeft.Title,
			Image: imageURL(d.SignatureLeftURL),
		},
		Right: SignatureView{
			Name:  d.SignerRight.Name,
			Title: d.SignerRight.Title,
			Image: imageURL(d.SignatureRightURL),
		},
		Date: d.Date,
		Code: code,
	}
	if r, ok := d.TopRank(); ok {
		v.Rank = r
		v.Winner = true
	}

	var buf bytes.Buffer
	if err := tpl.Render(&buf, v); err != nil {
		return nil, fmt.Errorf("compose %s: %w", tpl.Style, err)
	}

	var images []string
	for _, u := range []template.URL{v.PlatformLogo, v.CompanyLogo, v.Left.Image, v.Right.Image} {
		if u != "" {
			images = append(images, string(u))
		}
	}

	return &Document{
		Style:           tpl.Style,
		TemplateName:    tpl.Name,
		Title:           d.CertificateType,
		HTML:            buf.String(),
		Honoree:         v.Honoree,
		AchievementText: text,
		Code:            code,
		Images:          images,
		Width:           LogicalWidth,
		Height:          LogicalHeight,
	}, nil
}

func subline(d domain.CertificateData) string {
	switch {
	case d.IsTeam && strings.TrimSpace(d.ParticipantName) != "":
		return "Team Leader: " + d.ParticipantName
	case !d.IsTeam && strings.TrimSpace(d.TeamName) != "":
		return "Member of Team: " + d.TeamName
	}
	return ""
}

// imageURL accepts http(s) URLs and inline image data URLs. Anything else is
// treated as absent so the layout falls back to its glyph.
func imageURL(raw string) template.URL {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(s), "data:image/") {
		return template.URL(s)
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return template.URL(u.String())
	}
	return ""
}

// Initials builds the fallback glyph for a missing logo: the first letters
// of the first two words, or first and last letter of a single word.
func Initials(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	switch len(words) {
	case 0:
		return "?"
	case 1:
		runes := []rune(words[0])
		if len(runes) == 1 {
			return strings.ToUpper(string(runes))
		}
		return strings.ToUpper(string([]rune{runes[0], runes[len(runes)-1]}))
	}
	return strings.ToUpper(string([]rune{[]rune(words[0])[0], []rune(words[1])[0]}))
}

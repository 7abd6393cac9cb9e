package domain

import (
	"strings"
	"time"
)

// TemplateStyle identifies one of the fixed certificate layouts.
type TemplateStyle string

const (
	Template1 TemplateStyle = "template1"
	Template2 TemplateStyle = "template2"
	Template3 TemplateStyle = "template3"
	Template4 TemplateStyle = "template4"
)

// DefaultTemplate is used whenever a style is missing or unknown.
const DefaultTemplate = Template1

const (
	DefaultRankTitle       = "Participation Certificate"
	DefaultCertificateType = "Certificate of Participation"
	DefaultLeftSignerName  = "Platform Director"
	DefaultRightSignerName = "Event Organizer"
)

// DateLayout is the human-readable date format printed on certificates.
const DateLayout = "January 2, 2006"

// ResolveTemplateStyle maps any input onto a known style. It never fails.
func ResolveTemplateStyle(s TemplateStyle) TemplateStyle {
	switch TemplateStyle(strings.ToLower(strings.TrimSpace(string(s)))) {
	case Template1:
		return Template1
	case Template2:
		return Template2
	case Template3:
		return Template3
	case Template4:
		return Template4
	}
	return DefaultTemplate
}

type Signer struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// CertificateData is the single input of the rendering pipeline. It is
// supplied by the hackathon results flow and never persisted here.
type CertificateData struct {
	ParticipantName   string        `json:"participantName"`
	TeamName          string        `json:"teamName,omitempty"`
	IsTeam            bool          `json:"isTeam"`
	HackathonTitle    string        `json:"hackathonTitle"`
	Company           string        `json:"company"`
	Rank              *int          `json:"rank,omitempty"`
	RankTitle         string        `json:"rankTitle,omitempty"`
	CertificateType   string        `json:"certificateType,omitempty"`
	TemplateStyle     TemplateStyle `json:"templateStyle,omitempty"`
	LogoURL           string        `json:"logoUrl,omitempty"`
	PlatformLogoURL   string        `json:"platformLogoUrl,omitempty"`
	SignatureLeftURL  string        `json:"signatureLeftUrl,omitempty"`
	SignatureRightURL string        `json:"signatureRightUrl,omitempty"`
	CustomMessage     string        `json:"customMessage,omitempty"`
	SignerLeft        *Signer       `json:"signerLeft,omitempty"`
	SignerRight       *Signer       `json:"signerRight,omitempty"`
	Date              string        `json:"date,omitempty"`
	CertificateCode   string        `json:"certificateCode,omitempty"`
}

// Honoree returns the team name for team entries and the participant name
// otherwise.
func (d CertificateData) Honoree() string {
	if d.IsTeam {
		return d.TeamName
	}
	return d.ParticipantName
}

// TopRank reports the rank when it is one of the podium places.
func (d CertificateData) TopRank() (int, bool) {
	if d.Rank == nil {
		return 0, false
	}
	switch *d.Rank {
	case 1, 2, 3:
		return *d.Rank, true
	}
	return 0, false
}

// Normalize returns a copy with every display default applied. Signers are
// merged field by field so a partially filled signer keeps its other half.
func (d CertificateData) Normalize(brand string, now time.Time) CertificateData {
	out := d
	if r, ok := d.TopRank(); ok {
		out.Rank = &r
	} else {
		out.Rank = nil
	}
	if strings.TrimSpace(out.RankTitle) == "" {
		out.RankTitle = DefaultRankTitle
	}
	if strings.TrimSpace(out.CertificateType) == "" {
		out.CertificateType = DefaultCertificateType
	}
	out.TemplateStyle = ResolveTemplateStyle(d.TemplateStyle)
	out.SignerLeft = mergeSigner(d.SignerLeft, Signer{Name: DefaultLeftSignerName, Title: brand})
	out.SignerRight = mergeSigner(d.SignerRight, Signer{Name: DefaultRightSignerName, Title: d.Company})
	if strings.TrimSpace(out.Date) == "" {
		out.Date = now.Format(DateLayout)
	}
	return out
}

func mergeSigner(in *Signer, def Signer) *Signer {
	out := def
	if in != nil {
		if strings.TrimSpace(in.Name) != "" {
			out.Name = in.Name
		}
		if strings.TrimSpace(in.Title) != "" {
			out.Title = in.Title
		}
	}
	return &out
}

// RenderedDocument is the finished certificate. The caller owns it.
type RenderedDocument struct {
	PDF             []byte
	FileName        string
	CertificateCode string
	Template        TemplateStyle
	// Blank is set when the captured raster was entirely white. The
	// document is still produced.
	Blank        bool
	RasterWidth  int
	RasterHeight int
}

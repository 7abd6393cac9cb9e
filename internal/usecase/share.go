package usecase

import (
	"fmt"
	"net/url"
	"strings"

	"certificate-generator/internal/domain"
)

const linkedInShareEndpoint = "https://www.linkedin.com/sharing/share-offsite/"

// ShareText is the post offered to honorees after download.
func ShareText(d domain.CertificateData, brand string) string {
	return fmt.Sprintf("🎉 Excited to share that I %s in %s organized by %s via %s! 🚀\n\n"+
		"Grateful for this incredible learning experience and the opportunity to showcase my skills.\n\n"+
		"#Hackathon #Achievement #Innovation #TechCommunity #%s #%s",
		placement(d.Rank), d.HackathonTitle, d.Company, brand,
		stripSpaces(brand), stripSpaces(d.Company))
}

// LinkedInShareURL links to LinkedIn's share dialog for pageURL with the
// share text as summary.
func LinkedInShareURL(pageURL string, d domain.CertificateData, brand string) string {
	q := url.Values{}
	q.Set("url", pageURL)
	q.Set("summary", ShareText(d, brand))
	return linkedInShareEndpoint + "?" + q.Encode()
}

func placement(rank *int) string {
	if rank == nil || *rank <= 0 {
		return "participated"
	}
	switch *rank {
	case 1:
		return "secured 🥇 1st place"
	case 2:
		return "secured 🥈 2nd place"
	case 3:
		return "secured 🥉 3rd place"
	}
	return "secured " + ordinal(*rank) + " place"
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"certificate-generator/internal/domain"
)

const (
	fallbackRecipient = "Participant"
	fallbackTitle     = "Hackathon"
	fallbackCompany   = "Company confidential"
)

// ApplicationsRepo reads hackathon applications from the jobs database and
// turns them into certificate input.
type ApplicationsRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewApplicationsRepo(pool *pgxpool.Pool, logger *zap.Logger) *ApplicationsRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationsRepo{pool: pool, logger: logger}
}

type applicationRow struct {
	asTeam        bool
	teamName      string
	rank          *int32
	templateID    string
	customMessage string
	title         string
	company       string
	applicantName string
}

// LoadCertificate resolves the recipient of applicationID. For team
// applications email selects the member; without it the team itself is the
// honoree.
func (r *ApplicationsRepo) LoadCertificate(ctx context.Context, applicationID, email string) (domain.CertificateData, error) {
	if r.pool == nil {
		return domain.CertificateData{}, domain.ErrSourceUnavailable
	}

	var row applicationRow
	err := r.pool.QueryRow(ctx, `SELECT a.as_team, COALESCE(a.team_name, ''), a.final_rank,
		COALESCE(a.certificate_template_id, ''), COALESCE(a.custom_message, ''),
		COALESCE(h.title, ''), COALESCE(h.company, ''), COALESCE(u.name, '')
		FROM hackathon_applications a
		LEFT JOIN hackathons h ON h.id = a.hackathon_id
		LEFT JOIN users u ON u.id = a.applicant_id
		WHERE a.id = $1`, applicationID).Scan(
		&row.asTeam, &row.teamName, &row.rank, &row.templateID, &row.customMessage,
		&row.title, &row.company, &row.applicantName)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CertificateData{}, fmt.Errorf("application %s: %w", applicationID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.CertificateData{}, fmt.Errorf("load application %s: %w", applicationID, err)
	}

	memberName := ""
	if row.asTeam && email != "" {
		err := r.pool.QueryRow(ctx, `SELECT COALESCE(name, '') FROM hackathon_team_members
			WHERE application_id = $1 AND email = $2`, applicationID, email).Scan(&memberName)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return domain.CertificateData{}, fmt.Errorf("load team member: %w", err)
		}
		if memberName == "" {
			r.logger.Info("team member not found, using fallback name",
				zap.String("application", applicationID), zap.String("email", email))
		}
	}

	return row.certificate(email, memberName), nil
}

func (row applicationRow) certificate(email, memberName string) domain.CertificateData {
	d := domain.CertificateData{
		HackathonTitle: orDefault(row.title, fallbackTitle),
		Company:        orDefault(row.company, fallbackCompany),
		TemplateStyle:  domain.TemplateStyle(row.templateID),
		CustomMessage:  row.customMessage,
	}
	if row.rank != nil {
		rank := int(*row.rank)
		d.Rank = &rank
	}

	switch {
	case row.asTeam && email != "":
		// a member's own certificate names them and mentions the team
		d.ParticipantName = orDefault(memberName, fallbackRecipient)
		d.TeamName = row.teamName
	case row.asTeam:
		d.IsTeam = true
		d.ParticipantName = orDefault(row.applicantName, fallbackRecipient)
		d.TeamName = orDefault(row.teamName, d.ParticipantName)
	default:
		d.ParticipantName = orDefault(row.applicantName, fallbackRecipient)
	}
	return d
}

// AssignCertificateURLs stores the view link for the applicant, or for every
// member of a team application, and returns how many links were written.
func (r *ApplicationsRepo) AssignCertificateURLs(ctx context.Context, applicationID, baseURL string) (int, error) {
	if r.pool == nil {
		return 0, domain.ErrSourceUnavailable
	}

	written := 0
	err := r.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		var asTeam bool
		err := tx.QueryRow(ctx, `SELECT as_team FROM hackathon_applications WHERE id = $1 FOR UPDATE`, applicationID).Scan(&asTeam)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("application %s: %w", applicationID, domain.ErrNotFound)
		}
		if err != nil {
			return err
		}

		if !asTeam {
			_, err := tx.Exec(ctx, `UPDATE hackathon_applications SET certificate_url = $2 WHERE id = $1`,
				applicationID, CertificateURL(baseURL, applicationID, ""))
			if err != nil {
				return err
			}
			written = 1
			return nil
		}

		rows, err := tx.Query(ctx, `SELECT email FROM hackathon_team_members WHERE application_id = $1`, applicationID)
		if err != nil {
			return err
		}
		var emails []string
		for rows.Next() {
			var e string
			if err := rows.Scan(&e); err != nil {
				rows.Close()
				return err
			}
			emails = append(emails, e)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, e := range emails {
			_, err := tx.Exec(ctx, `UPDATE hackathon_team_members SET certificate_url = $3
				WHERE application_id = $1 AND email = $2`,
				applicationID, e, CertificateURL(baseURL, applicationID, e))
			if err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("assign certificate urls: %w", err)
	}

	r.logger.Info("certificate urls assigned", zap.String("application", applicationID), zap.Int("count", written))
	return written, nil
}

// CertificateURL builds the public view link for one recipient.
func CertificateURL(baseURL, applicationID, email string) string {
	q := url.Values{}
	q.Set("applicationId", applicationID)
	if email != "" {
		q.Set("email", email)
	}
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + q.Encode()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

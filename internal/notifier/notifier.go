// Package notifier executes the per-record verification email tasks.
package notifier

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/civicroom/memberdesk/internal/config"
	cidomain "github.com/civicroom/memberdesk/internal/contactinfo/domain"
	"github.com/civicroom/memberdesk/internal/jobqueue"
	orgdomain "github.com/civicroom/memberdesk/internal/organization/domain"
	"github.com/civicroom/memberdesk/internal/providers/email"
	"github.com/civicroom/memberdesk/internal/sanitize"
	"go.uber.org/zap"
)

// TaskCheckEmail asks an organisation to verify its contact record.
const TaskCheckEmail = "contact_info.check_email"

// Subject is fixed; the body carries the organisation-specific content.
const Subject = "Please review your organisation's details on CivicRoom"

//go:embed templates/check_org_email.html
var templateFS embed.FS

var checkEmailTmpl = template.Must(template.ParseFS(templateFS, "templates/check_org_email.html"))

type Notifier struct {
	log         *zap.Logger
	contactRepo cidomain.Repository
	orgRepo     orgdomain.Repository
	mailer      email.Provider
	staffDomain string
}

func New(log *zap.Logger, contactRepo cidomain.Repository, orgRepo orgdomain.Repository, mailer email.Provider, cfg config.Config) *Notifier {
	return &Notifier{
		log:         log.Named("notifier"),
		contactRepo: contactRepo,
		orgRepo:     orgRepo,
		mailer:      mailer,
		staffDomain: strings.ToLower(cfg.StaffEmailDomain),
	}
}

// Register binds the notifier's task runners on a worker.
func (n *Notifier) Register(w *jobqueue.Worker) {
	w.Register(TaskCheckEmail, n.RunCheckEmail)
}

// RunCheckEmail loads the record, resolves eligible managers, renders and
// sends the verification email. It never mutates the requires-check flag;
// only an explicit manager update clears it.
func (n *Notifier) RunCheckEmail(ctx context.Context, task jobqueue.Task) (string, error) {
	recordID, err := snowflake.ParseString(task.RecordID)
	if err != nil {
		return "", fmt.Errorf("bad record id %q: %w", task.RecordID, err)
	}

	record, err := n.contactRepo.GetByID(ctx, recordID)
	if err != nil {
		return "", err
	}
	org, err := n.orgRepo.GetByID(ctx, record.OrgID)
	if err != nil {
		return "", err
	}

	managers, err := n.EligibleManagerNames(ctx, org.ID)
	if err != nil {
		return "", err
	}

	htmlBody, err := RenderCheckEmail(org, managers)
	if err != nil {
		return "", err
	}

	msg := email.Message{
		To:       []string{record.GenericEmail},
		Subject:  Subject,
		Body:     sanitize.Strip(htmlBody),
		HTMLBody: htmlBody,
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		return "", fmt.Errorf("send verification mail: %w", err)
	}

	outcome := fmt.Sprintf("Emailed %s @ %s at %s about verifying their organisation details.",
		org.Title, org.Host, record.GenericEmail)
	if len(managers) == 0 {
		n.log.Warn("organisation has no eligible managers, likely needs manual follow-up",
			zap.String("org_id", org.ID.String()),
			zap.String("org_title", org.Title),
			zap.String("org_host", org.Host),
		)
	}
	return outcome, nil
}

// EligibleManagerNames resolves the personalization name set: users holding
// the manager role, minus internal staff accounts.
func (n *Notifier) EligibleManagerNames(ctx context.Context, orgID snowflake.ID) ([]string, error) {
	managers, err := n.orgRepo.ListManagers(ctx, orgID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(managers))
	names := make([]string, 0, len(managers))
	for _, manager := range managers {
		if n.isStaff(manager.Email) {
			continue
		}
		name := manager.FullName()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (n *Notifier) isStaff(address string) bool {
	if n.staffDomain == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(address), "@"+n.staffDomain)
}

type checkEmailData struct {
	SiteURL  string
	OrgTitle string
	Managers []string
}

// RenderCheckEmail renders the verification email body.
func RenderCheckEmail(org *orgdomain.Organization, managers []string) (string, error) {
	var buf bytes.Buffer
	err := checkEmailTmpl.Execute(&buf, checkEmailData{
		SiteURL:  org.SiteURL(),
		OrgTitle: org.Title,
		Managers: managers,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

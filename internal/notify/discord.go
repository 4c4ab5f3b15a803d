package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/danielholmes839/microstatus-dtr/internal/microstatus"
)

// Notifier tells someone about a finished run.
type Notifier interface {
	Notify(run microstatus.Run) error
}

type nop struct{}

func (nop) Notify(microstatus.Run) error { return nil }

// Nop is used when no notification target is configured.
var Nop Notifier = nop{}

func formatRun(run microstatus.Run, employeeID string, t time.Time) string {
	var sb strings.Builder

	action := "Time in"
	if run.Direction == microstatus.TimeOut {
		action = "Time out"
	}

	if run.Result.AlreadyRecorded {
		sb.WriteString(fmt.Sprintf("%s for %s on %s was already recorded.\n", action, employeeID, t.Format("Monday Jan 2")))
	} else {
		sb.WriteString(fmt.Sprintf("%s recorded for %s on %s.\n", action, employeeID, t.Format("Monday Jan 2")))
	}

	return sb.String()
}

func formatEmbed(run microstatus.Run) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Logs today",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Time In", Value: fieldValue(run.Log.TimeIn), Inline: true},
			{Name: "Time Out", Value: fieldValue(run.Log.TimeOut), Inline: true},
		},
	}
}

// discord rejects empty embed field values
func fieldValue(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// Discord posts the run to a Discord channel webhook.
type Discord struct {
	Session      *discordgo.Session
	WebhookID    string
	WebhookToken string
	EmployeeID   string
	Now          func() time.Time
}

func NewDiscord(webhookID, webhookToken, employeeID string) (*Discord, error) {
	// webhooks are authorised by their token, the session needs no bot token
	s, err := discordgo.New("")
	if err != nil {
		return nil, err
	}

	return &Discord{
		Session:      s,
		WebhookID:    webhookID,
		WebhookToken: webhookToken,
		EmployeeID:   employeeID,
		Now:          time.Now,
	}, nil
}

func (d *Discord) Notify(run microstatus.Run) error {
	_, err := d.Session.WebhookExecute(d.WebhookID, d.WebhookToken, true, &discordgo.WebhookParams{
		Content: formatRun(run, d.EmployeeID, d.Now().Local()),
		Embeds:  []*discordgo.MessageEmbed{formatEmbed(run)},
	})
	if err != nil {
		return fmt.Errorf("failed to post to discord webhook: %w", err)
	}
	return nil
}

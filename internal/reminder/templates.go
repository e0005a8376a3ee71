package reminder

import (
	"context"
	"fmt"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/appointments"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/textgen"
)

const (
	apptLayout     = "Monday, 02 Jan 2006 at 03:04 PM"
	rescheduleHint = `If the timing doesn't work, just reply "RESCHEDULE" and we'll find you a new slot.`
)

func (s *Scheduler) countdownBody(ctx context.Context, appt appointments.Appointment, days int) string {
	when := appt.Time.In(s.loc).Format(apptLayout)
	dayWord := "days"
	if days == 1 {
		dayWord = "day"
	}
	fallback := fmt.Sprintf("Hi %s! Just %d %s to go until your appointment on %s.",
		appt.Name, days, dayWord, when)
	prompt := fmt.Sprintf(
		"Write a short, friendly WhatsApp reminder (2 sentences max) for %s whose appointment is in %d %s, on %s. No emojis, no placeholders.",
		appt.Name, days, dayWord, when)
	body := textgen.GenerateOrDefault(ctx, s.gen, prompt, fallback, s.logger)
	return body + "\n\n" + rescheduleHint
}

func (s *Scheduler) nearTermBody(ctx context.Context, appt appointments.Appointment) string {
	when := appt.Time.In(s.loc).Format("03:04 PM")
	fallback := fmt.Sprintf("Hi %s! A quick reminder that your appointment is today at %s. See you soon!",
		appt.Name, when)
	prompt := fmt.Sprintf(
		"Write a short, friendly WhatsApp reminder (2 sentences max) for %s whose appointment is later today at %s. No emojis, no placeholders.",
		appt.Name, when)
	body := textgen.GenerateOrDefault(ctx, s.gen, prompt, fallback, s.logger)
	return body + "\n\n" + rescheduleHint
}

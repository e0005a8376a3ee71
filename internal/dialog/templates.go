package dialog

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateListLayout = "Monday, 02 Jan 2006"
	slotLayout     = "03:04 PM"
	confirmLayout  = "Monday, 02 Jan 2006 at 03:04 PM"
)

func retentionPrompt(name string) string {
	return fmt.Sprintf(
		"Hi %s, we'd hate to see you go! If the timing is the problem we can easily move your appointment to a slot that works better for you.",
		name,
	)
}

const cancellationChoicePrompt = `Please reply with one of the following:
1. "confirm cancel" to cancel your appointment
2. "reschedule" to pick a new slot`

func dateListMessage(dates []time.Time) string {
	var b strings.Builder
	b.WriteString("Here are the days we have open. Reply with the number of the day you'd like:\n")
	for i, d := range dates {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d.Format(dateListLayout))
	}
	return strings.TrimRight(b.String(), "\n")
}

func slotListMessage(date time.Time, slots []time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Great, here are the available times on %s. Reply with the time you'd like (for example \"%s\"):\n",
		date.Format(dateListLayout), slots[0].Format(slotLayout))
	for _, s := range slots {
		fmt.Fprintf(&b, "- %s\n", s.Format(slotLayout))
	}
	return strings.TrimRight(b.String(), "\n")
}

func rescheduleConfirmation(name string, oldTime, newTime time.Time) string {
	return fmt.Sprintf("All set, %s! Your appointment has been moved from %s to %s. See you then!",
		name, oldTime.Format(confirmLayout), newTime.Format(confirmLayout))
}

func cancellationFarewell(name string) string {
	return fmt.Sprintf("Your appointment has been cancelled, %s. We're sorry to see you go — you're always welcome back.", name)
}

func invalidDateChoiceMessage(dates []time.Time) string {
	return "Sorry, I didn't catch that. " + dateListMessage(dates)
}

func invalidTimeChoiceMessage(date time.Time, slots []time.Time) string {
	return "Sorry, I didn't catch that. " + slotListMessage(date, slots)
}

const noDatesAvailableMessage = "We're sorry, there are no open days in the coming week. Please message us again in a few days and we'll find you a slot."

func noSlotsOnDateMessage(dates []time.Time) string {
	return "Unfortunately that day is fully booked. " + dateListMessage(dates)
}

const genericApologyMessage = "Sorry, something went wrong on our side. Please send your message again."

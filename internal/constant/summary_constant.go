package constant

const (
	DefaultNoteTitle = "Untitled Note"

	SummaryPlaceholderCreate = "Summary will be generated shortly..."
	SummaryPlaceholderUpdate = "Summary will be updated shortly..."
	SummaryNoContent         = "No content provided for summarization."
	SummaryFallbackPrefix    = "Note preview: "
	SummaryFallbackLength    = 100

	ReminderTitle          = "Note Reminder"
	ReminderSummaryLength  = 200
	ReminderGenericBodyFmt = "Reminder for note: %s"
	ReminderLinkFmt        = "/editor?id=%s"
)

// IsSummaryPlaceholder reports whether s is one of the interim summaries
// written before enrichment finishes.
func IsSummaryPlaceholder(s string) bool {
	return s == SummaryPlaceholderCreate || s == SummaryPlaceholderUpdate
}

// SummaryPromptV1 turns a note into a single push-notification line.
const SummaryPromptV1 = `You write push-notification reminders for a notes app.

Turn the note below into ONE short reminder the user will see on their phone.

Rules:
- Open with an action prefix such as "Reminder:", "Check", "Follow up", "Send", "Update", "Share", "Review", "Ask" or "Ping".
- Use the imperative voice and keep every concrete detail from the note: times, dates, people, places, deadlines, amounts.
- Use " — " to attach extra context to the main action.
- Do not invent facts that are not in the note.
- Output only the reminder line. No quotes, no markdown, no explanations.

Examples:
Note: Meeting with Design team at 5 PM today
Notification: Reminder: Design team meeting at 5 PM today

Note: Need to send invoice to Acme before Friday, they asked twice already
Notification: Send invoice to Acme — due before Friday, second request

Note: Check if the staging deploy fixed the login bug
Notification: Check staging deploy — confirm login bug is fixed

Note: %s
Notification:`

package text

import "fmt"

// Broadcast messages.
const (
	AskBroadcast       = "📢 Send the message to broadcast (text or photo).\n\nSend /cancel to abort."
	BroadcastCancelled = "❌ Broadcast cancelled."
	NoRecipients       = "📭 There are no users to broadcast to."
)

// BroadcastStarted is the initial progress message.
func BroadcastStarted(total int) string {
	return fmt.Sprintf("📤 Broadcasting to %d users...", total)
}

// BroadcastProgress is the in-place progress update.
func BroadcastProgress(attempted, total, succeeded, failed int) string {
	return fmt.Sprintf("📤 Sending... %d/%d\n\n✅ Delivered: %d\n❌ Failed: %d", attempted, total, succeeded, failed)
}

// BroadcastDone is the final summary.
func BroadcastDone(total, succeeded, failed int) string {
	return fmt.Sprintf("✅ *Broadcast finished*\n\n👥 Total: %d\n✅ Delivered: %d\n❌ Failed: %d", total, succeeded, failed)
}

// Stats summarises the store for admins.
func Stats(users, products, available int) string {
	return fmt.Sprintf("📊 *Statistics*\n\n👥 Users: %d\n📦 Products: %d\n✅ Available: %d", users, products, available)
}

package fcm

import "testing"

func TestMulticastMessage(t *testing.T) {
	t.Parallel()

	n := NotificationData{
		Title:       "Reminder",
		Body:        "Dentist",
		Data:        map[string]string{"taskId": "t1"},
		ClickAction: "/dashboard",
	}
	msg := n.multicast([]string{"a", "b"})

	if len(msg.Tokens) != 2 || msg.Notification.Title != "Reminder" || msg.Data["taskId"] != "t1" {
		t.Fatalf("message = %+v", msg)
	}
	if msg.Webpush.FCMOptions == nil || msg.Webpush.FCMOptions.Link != "/dashboard" {
		t.Fatalf("click action not set: %+v", msg.Webpush)
	}

	if plain := (NotificationData{Title: "x"}).multicast([]string{"a"}); plain.Webpush.FCMOptions != nil {
		t.Fatal("no click action should leave FCMOptions empty")
	}
}

func TestShortToken(t *testing.T) {
	t.Parallel()
	if got := shortToken("abc"); got != "abc" {
		t.Errorf("shortToken(short) = %q", got)
	}
	if got := shortToken("0123456789012345678901234"); got != "01234567890123456789..." {
		t.Errorf("shortToken(long) = %q", got)
	}
}

package session

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maheshwarkibehan-hub/vyaas-backend-android/internal/models"
)

func startTestHub(t *testing.T, tokenSecret string) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(tokenSecret, nil)
	go hub.Run()

	r := gin.New()
	r.GET("/ws", hub.HandleWebSocket())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHubFansOutToSubscribers(t *testing.T) {
	hub, wsURL := startTestHub(t, "")

	client, err := Dial(wsURL, "", nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	received := make(chan Message, 1)
	client.Subscribe(models.TopicNotifications, func(msg Message) {
		received <- msg
	})

	// Wait for the hub to register the participant before broadcasting.
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("participant never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ev := models.NotificationEvent{ID: "m1", Sender: "Alice", Body: "hi"}
	if err := hub.Publish(models.TopicNotifications, ev); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case msg := <-received:
		if msg.Topic != models.TopicNotifications {
			t.Fatalf("expected topic %q, got %q", models.TopicNotifications, msg.Topic)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never received the event")
	}
}

func TestHubRelaysParticipantFrames(t *testing.T) {
	hub, wsURL := startTestHub(t, "")

	sender, err := Dial(wsURL, "", nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer sender.Close()

	receiver, err := Dial(wsURL, "", nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer receiver.Close()

	received := make(chan Message, 1)
	receiver.Subscribe(models.TopicLocalCommands, func(msg Message) {
		received <- msg
	})

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("participants never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	env := models.CommandEnvelope{Command: "lock_pc"}
	if err := sender.Publish(models.TopicLocalCommands, env); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("frame never relayed to the other participant")
	}
}

func TestHubDropsDeadParticipantDuringBroadcast(t *testing.T) {
	hub, wsURL := startTestHub(t, "")

	client, err := Dial(wsURL, "", nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("participant never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Kill the connection out from under the hub, then keep publishing while
	// another goroutine polls the participant count. The fan-out must drop
	// the dead connection without tripping over concurrent readers.
	client.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		ev := models.SystemAlert{Message: "CPU usage is at 95%."}
		for i := 0; i < 50; i++ {
			_ = hub.Publish(models.TopicSystemAlert, ev)
			time.Sleep(2 * time.Millisecond)
		}
	}()

	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("dead participant never dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
	<-done
}

func TestClientFansOutToAllTopicHandlers(t *testing.T) {
	hub, wsURL := startTestHub(t, "")

	client, err := Dial(wsURL, "", nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	first := make(chan Message, 1)
	second := make(chan Message, 1)
	client.Subscribe(models.TopicNotifications, func(msg Message) { first <- msg })
	client.Subscribe(models.TopicNotifications, func(msg Message) { second <- msg })

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("participant never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ev := models.NotificationEvent{ID: "m1", Sender: "Alice", Body: "hi"}
	if err := hub.Publish(models.TopicNotifications, ev); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	for name, ch := range map[string]chan Message{"first": first, "second": second} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s handler never received the event", name)
		}
	}
}

func TestHubRejectsBadToken(t *testing.T) {
	_, wsURL := startTestHub(t, "signing-secret")

	if _, err := Dial(wsURL, "not-a-token", nil); err == nil {
		t.Fatal("expected join with a bad token to fail")
	}

	token, err := GenerateToken("signing-secret", "tester", "room")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	client, err := Dial(wsURL, token, nil)
	if err != nil {
		t.Fatalf("expected join with a valid token to succeed: %v", err)
	}
	client.Close()
}

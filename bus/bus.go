package bus

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/philippseith/signalr"

	"github.com/vainnor/freq-bridge/models"
)

// groupName is the broadcast group carrying bot-directed notifications.
// Joining is idempotent and is re-announced after every reconnect.
const groupName = "Bot"

type FrequencyHandler interface {
	HandleChangeFrequency(clientID string, from, to *int)
}

type AircraftTracker interface {
	Update(clientID string, status models.AircraftStatus)
}

// receiver gets server-to-client hub invocations.
type receiver struct {
	signalr.Receiver
	frequencies FrequencyHandler
	tracker     AircraftTracker
}

// ChangeFrequency is invoked by the hub when a simulator client tunes its
// radio. Events are dispatched on their own goroutine; there is no ordering
// guarantee between events.
func (r *receiver) ChangeFrequency(clientID string, from, to *int) {
	log.Printf("Got ChangeFrequency from %s: %v -> %v", clientID, freqString(from), freqString(to))
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("Error handling frequency change of %s: %v", clientID, rec)
			}
		}()
		r.frequencies.HandleChangeFrequency(clientID, from, to)
	}()
}

// UpdateAircraft is invoked by the hub on every position report.
func (r *receiver) UpdateAircraft(clientID string, status models.AircraftStatus) {
	r.tracker.Update(clientID, status)
}

func freqString(f *int) string {
	if f == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *f)
}

// sender is the slice of the hub client used for outbound notifications.
type sender interface {
	Send(method string, arguments ...interface{}) <-chan error
}

// Client is the hub connection of the bridge.
type Client struct {
	client        signalr.Client
	cancelObserve context.CancelFunc
}

// Connect dials the SignalR hub and starts receiving. The client reconnects
// on its own; the broadcast group is re-joined whenever the connection comes
// back up.
func Connect(ctx context.Context, address string, frequencies FrequencyHandler, tracker AircraftTracker) (*Client, error) {
	recv := &receiver{frequencies: frequencies, tracker: tracker}

	client, err := signalr.NewClient(ctx,
		signalr.WithConnector(func() (signalr.Connection, error) {
			dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return signalr.NewHTTPConnection(dialCtx, address)
		}),
		signalr.WithReceiver(recv),
		signalr.TransferFormat(signalr.TransferFormatText),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating hub client: %v", err)
	}

	stateCh := make(chan signalr.ClientState, 1)
	c := &Client{
		client:        client,
		cancelObserve: client.ObserveStateChanged(stateCh),
	}
	go watchState(ctx, client, stateCh)

	client.Start()
	log.Printf("Connecting to hub at %s", address)

	return c, nil
}

// watchState re-announces group membership after every (re)connect.
func watchState(ctx context.Context, s sender, stateCh <-chan signalr.ClientState) {
	for {
		select {
		case <-ctx.Done():
			return
		case state := <-stateCh:
			if state == signalr.ClientConnected {
				log.Printf("Connected to hub, joining group %s", groupName)
				joinGroup(s)
			}
		}
	}
}

func joinGroup(s sender) {
	errCh := s.Send("Join", groupName)
	go func() {
		if err := <-errCh; err != nil {
			log.Printf("Error joining group %s: %v", groupName, err)
		}
	}()
}

// RequestFlightRoute streams the recorded route of a session. The route data
// itself is handled elsewhere; the call shares this transport.
func (c *Client) RequestFlightRoute(clientID string) <-chan signalr.InvokeResult {
	return c.client.PullStream("RequestFlightRoute", clientID)
}

// Stop terminates the hub connection.
func (c *Client) Stop() {
	c.cancelObserve()
	c.client.Stop()
}

package kernel

import (
	"strings"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// CloudEventSource is the source attribute set on kernel events exported in
// CloudEvents form.
const CloudEventSource = "mdt/kernel"

// cloudEventTypePrefix namespaces exported event types in reverse-domain
// notation per the CloudEvents convention.
const cloudEventTypePrefix = "com.mdt.kernel."

// CloudEventType maps a bus event name to its exported CloudEvents type:
// "module:activated" becomes "com.mdt.kernel.module.activated".
func CloudEventType(name string) string {
	return cloudEventTypePrefix + strings.ReplaceAll(name, ":", ".")
}

// ToCloudEvent wraps a bus event in a CloudEvents envelope for delivery to
// external systems. The payload is attached as JSON data; the original bus
// name travels in the "busevent" extension so subscribers can route on it.
func ToCloudEvent(event Event) cloudevents.Event {
	ce := cloudevents.NewEvent()
	ce.SetID(generateEventID())
	ce.SetSource(CloudEventSource)
	ce.SetType(CloudEventType(event.Name))
	ce.SetTime(time.Now())
	ce.SetSpecVersion(cloudevents.VersionV1)
	ce.SetExtension("busevent", event.Name)
	if event.Payload != nil {
		_ = ce.SetData(cloudevents.ApplicationJSON, event.Payload)
	}
	return ce
}

// generateEventID generates CloudEvent ids using UUIDv7 for time-ordered
// uniqueness, falling back to v4 if v7 generation fails.
func generateEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// CloudEventSink receives kernel events exported as CloudEvents.
type CloudEventSink func(event cloudevents.Event)

// ExportCloudEvents forwards the named bus events to sink in CloudEvents
// form. It returns a single unsubscribe function covering every forwarded
// name. Sink errors cannot occur; sink panics are contained by the bus like
// any other handler failure.
func ExportCloudEvents(bus *EventBus, sink CloudEventSink, names ...string) (func(), error) {
	unsubscribes := make([]func(), 0, len(names))
	for _, name := range names {
		unsubscribe, err := bus.On(name, func(event Event) error {
			sink(ToCloudEvent(event))
			return nil
		})
		if err != nil {
			for _, u := range unsubscribes {
				u()
			}
			return nil, err
		}
		unsubscribes = append(unsubscribes, unsubscribe)
	}

	return func() {
		for _, u := range unsubscribes {
			u()
		}
	}, nil
}

package services

const (
	EventTripCreated         = "trip.created"
	EventTripVisibility      = "trip.visibility_changed"
	EventTripDeleted         = "trip.deleted"
	EventReservationCreated  = "reservation.created"
	EventReservationChanged  = "reservation.changed"
	EventReservationCanceled = "reservation.cancelled"
)

// Publisher receives domain events after the change is stored.
type Publisher interface {
	Publish(companyID uint, event string, payload interface{})
}

// Publishers fans an event out to every member.
type Publishers []Publisher

func (ps Publishers) Publish(companyID uint, event string, payload interface{}) {
	for _, p := range ps {
		if p != nil {
			p.Publish(companyID, event, payload)
		}
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(uint, string, interface{}) {}

func orNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Camp represents a medical camp listed by a seller
type Camp struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name         string             `bson:"name" json:"name" validate:"required"`
	Image        string             `bson:"image,omitempty" json:"image,omitempty"`
	Fee          float64            `bson:"fee" json:"fee" validate:"gte=0"`
	Location     string             `bson:"location,omitempty" json:"location,omitempty"`
	DateTime     string             `bson:"dateTime,omitempty" json:"dateTime,omitempty"`
	Professional string             `bson:"professional,omitempty" json:"professional,omitempty"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Seller       Party              `bson:"seller" json:"seller"`
	Participant  int                `bson:"participant" json:"participant"` // not a capacity limit, may go negative
}

// ParticipantUpdate is the body of PATCH /camps/participant/{id}. A status of
// "increase" adds Count, anything else subtracts it.
type ParticipantUpdate struct {
	Count  int    `json:"participantToUpdate"`
	Status string `json:"status"`
}

const ParticipantIncrease = "increase"

// Delta returns the signed change to apply to the participant counter
func (u ParticipantUpdate) Delta() int {
	if u.Status == ParticipantIncrease {
		return u.Count
	}
	return -u.Count
}

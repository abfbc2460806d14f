package domain

import "time"

// Dette is a debt record owned by a Client. This service only reads debts;
// mutation belongs to the accounting module.
type Dette struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	ClientID       string    `json:"client_id" bson:"client_id"`
	Montant        float64   `json:"montant" bson:"montant"`
	MontantDu      float64   `json:"montant_du" bson:"montant_du"`
	MontantRestant float64   `json:"montant_restant" bson:"montant_restant"`
	Date           time.Time `json:"date" bson:"date"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	IsAdmin      bool               `bson:"is_admin" json:"is_admin"`
	DateCreated  time.Time          `bson:"date_created" json:"date_created"`
}

// UserRef : projection {id, name} utilisée quand on 'popule' le champ user
// d'une commande (on ne renvoie jamais l'e-mail ni le hash dans ce contexte)
type UserRef struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
}

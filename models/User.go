package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RolUsuario = "usuario"
	RolAdmin   = "admin"
)

type User struct {
	gorm.Model
	Nombre      string         `json:"nombre"`
	Email       string         `json:"email" gorm:"uniqueIndex"`
	Password    string         `json:"-"`
	Telefono    string         `json:"telefono"`
	Rol         string         `json:"rol" gorm:"type:varchar(20);default:usuario;index"` // usuario, admin
	Favoritos   datatypes.JSON `json:"favoritos"`
	Propiedades []Property     `json:"propiedades,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
}

// MarshalJSON renders Favoritos as a plain array of property IDs instead of
// the raw JSONB payload.
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		Favoritos []uint `json:"favoritos"`
		*Alias
	}{
		Favoritos: []uint{},
		Alias:     (*Alias)(u),
	}

	if u.Favoritos != nil {
		var favoritos []uint
		if err := json.Unmarshal(u.Favoritos, &favoritos); err == nil {
			aux.Favoritos = favoritos
		}
	}

	return json.Marshal(aux)
}

// FavoritoIDs decodes the Favoritos column; a missing or malformed column
// yields an empty set.
func (u *User) FavoritoIDs() []uint {
	if u.Favoritos == nil {
		return []uint{}
	}
	var ids []uint
	if err := json.Unmarshal(u.Favoritos, &ids); err != nil {
		return []uint{}
	}
	return ids
}

package cache

import (
	"strconv"
	"strings"
)

// UserKey es la key del usuario por id.
func UserKey(id int64) string { return "user:id:" + strconv.FormatInt(id, 10) }

// UserEmailKey es la key del usuario por email (normalizado a minúsculas).
func UserEmailKey(email string) string {
	return "user:email:" + strings.ToLower(strings.TrimSpace(email))
}

// UserCardsKey es la key de las tarjetas de un usuario.
func UserCardsKey(userID int64) string { return "user:cards:" + strconv.FormatInt(userID, 10) }

// CardKey es la key de la tarjeta por id.
func CardKey(id int64) string { return "card:id:" + strconv.FormatInt(id, 10) }

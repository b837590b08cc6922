package claims

import (
	"strconv"
	"strings"

	"github.com/dropDatabas3/scopegate/internal/domain/repository"
)

// Tabla cerrada de atributos resolubles del usuario.
//
// Los mappings declaran paths con puntos ("address.country"); en vez de
// reflection en runtime, cada path conocido tiene un accessor estático.
// Path desconocido o valor intermedio nil => ("", false): sin valor, sin
// error. El contrato degrade-gracefully se preserva.
var attributeTable = map[string]func(*repository.User) (string, bool){
	"id":    func(u *repository.User) (string, bool) { return nonEmpty(u.ID) },
	"email": func(u *repository.User) (string, bool) { return nonEmpty(u.Email) },
	"email_confirmed": func(u *repository.User) (string, bool) {
		return strconv.FormatBool(u.EmailConfirmed), true
	},
	"phone_number": func(u *repository.User) (string, bool) { return nonEmpty(u.PhoneNumber) },
	"phone_confirmed": func(u *repository.User) (string, bool) {
		return strconv.FormatBool(u.PhoneConfirmed), true
	},
	"name":        func(u *repository.User) (string, bool) { return nonEmpty(u.Name) },
	"given_name":  func(u *repository.User) (string, bool) { return nonEmpty(u.GivenName) },
	"family_name": func(u *repository.User) (string, bool) { return nonEmpty(u.FamilyName) },
	"picture":     func(u *repository.User) (string, bool) { return nonEmpty(u.Picture) },
	"locale":      func(u *repository.User) (string, bool) { return nonEmpty(u.Locale) },

	"address.street_address": addressAttr(func(a *repository.Address) string { return a.StreetAddress }),
	"address.locality":       addressAttr(func(a *repository.Address) string { return a.Locality }),
	"address.region":         addressAttr(func(a *repository.Address) string { return a.Region }),
	"address.postal_code":    addressAttr(func(a *repository.Address) string { return a.PostalCode }),
	"address.country":        addressAttr(func(a *repository.Address) string { return a.Country }),
}

// ResolveAttribute resuelve un path de atributo contra el usuario.
// Retorna (valor, true) si hay valor; ("", false) en cualquier otro caso
// (usuario nil, path desconocido, segmento intermedio nil, valor vacío).
func ResolveAttribute(u *repository.User, path string) (string, bool) {
	if u == nil {
		return "", false
	}
	fn, ok := attributeTable[strings.ToLower(strings.TrimSpace(path))]
	if !ok {
		return "", false
	}
	return fn(u)
}

func nonEmpty(v string) (string, bool) {
	if strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func addressAttr(get func(*repository.Address) string) func(*repository.User) (string, bool) {
	return func(u *repository.User) (string, bool) {
		if u.Address == nil {
			return "", false
		}
		return nonEmpty(get(u.Address))
	}
}

// Package profile reconcilia las tarjetas persistidas de un usuario con la
// lista deseada que llega en una actualización de perfil.
package profile

import "github.com/dropDatabas3/usercards/internal/domain/repository"

// Reconciliation es el delta calculado por ReconcileCards.
//
// Updated conserva el orden de la lista entrante: entradas con ID > 0 son
// tarjetas existentes actualizadas en el lugar, ID == 0 son inserts.
// ToDelete son las tarjetas existentes que no quedaron referenciadas.
type Reconciliation struct {
	Updated  []repository.Card
	ToDelete []repository.Card
}

// KeptIDs retorna los ids existentes que sobreviven, sin repetir.
func (r Reconciliation) KeptIDs() []int64 {
	seen := make(map[int64]struct{}, len(r.Updated))
	out := make([]int64, 0, len(r.Updated))
	for _, c := range r.Updated {
		if c.ID == 0 {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c.ID)
	}
	return out
}

// DeleteIDs retorna los ids de ToDelete.
func (r Reconciliation) DeleteIDs() []int64 {
	out := make([]int64, 0, len(r.ToDelete))
	for _, c := range r.ToDelete {
		out = append(out, c.ID)
	}
	return out
}

// ReconcileCards calcula el set final de tarjetas de owner.
//
// existing debe estar acotado a las tarjetas de owner: un id entrante que no
// aparece ahí se trata como tarjeta nueva y el id se descarta. Si un id se
// repite en incoming gana la última ocurrencia, y ambas entradas de Updated
// reflejan esos valores. Lista entrante vacía => se borran todas.
//
// Es una función pura: no modifica existing ni incoming.
func ReconcileCards(existing []repository.Card, incoming []repository.CardInput, owner repository.User) Reconciliation {
	byID := make(map[int64]*repository.Card, len(existing))
	for i := range existing {
		if existing[i].ID == 0 {
			continue
		}
		c := existing[i]
		byID[c.ID] = &c
	}

	// slots apunta a la tarjeta existente (compartida entre duplicados) o a una nueva.
	slots := make([]*repository.Card, 0, len(incoming))
	kept := make(map[int64]struct{}, len(incoming))
	for _, in := range incoming {
		if in.ID != nil {
			if cur, ok := byID[*in.ID]; ok {
				cur.Number = in.Number
				cur.Holder = in.Holder
				cur.ExpirationDate = in.ExpirationDate
				kept[cur.ID] = struct{}{}
				slots = append(slots, cur)
				continue
			}
		}
		slots = append(slots, &repository.Card{
			UserID:         owner.ID,
			Number:         in.Number,
			Holder:         in.Holder,
			ExpirationDate: in.ExpirationDate,
		})
	}

	res := Reconciliation{Updated: make([]repository.Card, 0, len(slots))}
	for _, s := range slots {
		c := *s
		c.UserID = owner.ID
		res.Updated = append(res.Updated, c)
	}
	for _, c := range existing {
		if c.ID == 0 {
			continue
		}
		if _, ok := kept[c.ID]; !ok {
			res.ToDelete = append(res.ToDelete, c)
		}
	}
	return res
}

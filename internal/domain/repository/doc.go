// Package repository define las entidades y los contratos de persistencia del dominio.
//
// Las interfaces son independientes del almacenamiento: internal/store/pg las
// implementa sobre PostgreSQL y internal/store/memory en memoria (tests y modo dev).
//
//	┌──────────────────────────────────────────┐
//	│        services / access engine          │
//	└──────────────────────────────────────────┘
//	                    │
//	                    ▼
//	┌──────────────────────────────────────────┐
//	│   domain/repository (interfaces)         │
//	│   UserRepository, CardRepository         │
//	└──────────────────────────────────────────┘
//	           │                    │
//	           ▼                    ▼
//	    ┌────────────┐       ┌────────────┐
//	    │  store/pg  │       │store/memory│
//	    └────────────┘       └────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro.
//   - Una tarjeta referencia a su dueño por UserID, nunca por puntero.
//   - Errores de dominio en errors.go.
package repository

package user

import (
	"fmt"
	"time"

	"stoneTracker/services/stone"
)

// Document field names. They must match what the mobile clients write.
const (
	fieldName         = "name"
	fieldEmail        = "email"
	fieldStones       = "stones"
	fieldCreatedAt    = "createdAt"
	fieldStoneID      = "id"
	fieldStoneName    = "name"
	fieldStoneColor   = "color"
	fieldStonePower   = "power"
	fieldAcquiredFrom = "acquiredFrom"
)

// ParseRecord maps the raw data of a user document into a User.
// A missing or mistyped required field fails with ErrParse, a document that
// breaks an invariant (unknown or repeated stone) fails with ErrValidation.
func ParseRecord(id string, data map[string]any) (User, error) {
	if id == "" {
		return User{}, ErrMissingID
	}
	if data == nil {
		return User{}, fmt.Errorf("%w: %s: empty document", ErrParse, id)
	}
	u := User{ID: id}

	name, err := requiredString(data, fieldName)
	if err != nil {
		return User{}, fmt.Errorf("%w: %s: %v", ErrParse, id, err)
	}
	u.Name = name

	if raw, ok := data[fieldEmail]; ok && raw != nil {
		email, ok := raw.(string)
		if !ok {
			return User{}, fmt.Errorf("%w: %s: field %q is %T, want string", ErrParse, id, fieldEmail, raw)
		}
		u.Email = email
	}

	rawCreated, ok := data[fieldCreatedAt]
	if !ok || rawCreated == nil {
		return User{}, fmt.Errorf("%w: %s: missing field %q", ErrParse, id, fieldCreatedAt)
	}
	createdAt, ok := rawCreated.(time.Time)
	if !ok {
		return User{}, fmt.Errorf("%w: %s: field %q is %T, want timestamp", ErrParse, id, fieldCreatedAt, rawCreated)
	}
	u.CreatedAt = createdAt

	rawStones, ok := data[fieldStones]
	if !ok || rawStones == nil {
		return User{}, fmt.Errorf("%w: %s: missing field %q", ErrParse, id, fieldStones)
	}
	items, ok := rawStones.([]any)
	if !ok {
		return User{}, fmt.Errorf("%w: %s: field %q is %T, want array", ErrParse, id, fieldStones, rawStones)
	}
	if len(items) > stone.Size {
		return User{}, fmt.Errorf("%w: %s: holds %d stones", ErrValidation, id, len(items))
	}

	u.Stones = make([]stone.Stone, 0, len(items))
	for i, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return User{}, fmt.Errorf("%w: %s: stones[%d] is %T, want map", ErrParse, id, i, item)
		}
		s, err := parseStone(fields)
		if err != nil {
			return User{}, fmt.Errorf("%s: stones[%d]: %w", id, i, err)
		}
		if u.Has(s.ID) {
			return User{}, fmt.Errorf("%w: %s: stone %q held twice", ErrValidation, id, s.ID)
		}
		u.Stones = append(u.Stones, s)
	}
	return u, nil
}

func parseStone(fields map[string]any) (stone.Stone, error) {
	var (
		s   stone.Stone
		err error
	)
	if s.ID, err = requiredString(fields, fieldStoneID); err != nil {
		return stone.Stone{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if _, ok := stone.Find(s.ID); !ok {
		return stone.Stone{}, fmt.Errorf("%w: unknown stone %q", ErrValidation, s.ID)
	}
	if s.Name, err = requiredString(fields, fieldStoneName); err != nil {
		return stone.Stone{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if s.Color, err = requiredString(fields, fieldStoneColor); err != nil {
		return stone.Stone{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if s.Power, err = requiredString(fields, fieldStonePower); err != nil {
		return stone.Stone{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	switch from := fields[fieldAcquiredFrom].(type) {
	case nil:
	case string:
		s.AcquiredFrom = from
	default:
		return stone.Stone{}, fmt.Errorf("%w: field %q is %T, want string", ErrParse, fieldAcquiredFrom, from)
	}
	return s, nil
}

func requiredString(data map[string]any, field string) (string, error) {
	raw, ok := data[field]
	if !ok || raw == nil {
		return "", fmt.Errorf("missing field %q", field)
	}
	v, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, want string", field, raw)
	}
	return v, nil
}

// ToDocument builds the full document body written for u. Writes always
// replace the whole document.
func ToDocument(u User) map[string]any {
	stones := make([]any, 0, len(u.Stones))
	for _, s := range u.Stones {
		entry := map[string]any{
			fieldStoneID:    s.ID,
			fieldStoneName:  s.Name,
			fieldStoneColor: s.Color,
			fieldStonePower: s.Power,
		}
		if s.AcquiredFrom != "" {
			entry[fieldAcquiredFrom] = s.AcquiredFrom
		}
		stones = append(stones, entry)
	}
	return map[string]any{
		fieldName:      u.Name,
		fieldEmail:     u.Email,
		fieldStones:    stones,
		fieldCreatedAt: u.CreatedAt,
	}
}

package role

import (
	"errors"
	"strings"
)

// ErrUnknown is returned when a role string does not name any known role.
var ErrUnknown = errors.New("unknown role")

// Role identifies the authorization identity of a session.
type Role string

const (
	User          Role = "USER"
	StationStaff  Role = "STATION_STAFF"
	StationMaster Role = "STATION_MASTER"
	RPFAdmin      Role = "RPF_ADMIN"
	SuperAdmin    Role = "SUPER_ADMIN"
)

// All lists every role in display order.
var All = []Role{User, StationStaff, StationMaster, RPFAdmin, SuperAdmin}

var aliases = map[string]Role{
	"USER":           User,
	"PASSENGER":      User,
	"STATION_STAFF":  StationStaff,
	"STATION_MASTER": StationMaster,
	"RPF_ADMIN":      RPFAdmin,
	"ADMIN":          RPFAdmin,
	"SUPER_ADMIN":    SuperAdmin,
}

// Parse normalizes a role name, accepting the legacy ADMIN and PASSENGER spellings.
func Parse(value string) (Role, error) {
	key := strings.ToUpper(strings.TrimSpace(value))
	key = strings.ReplaceAll(key, "-", "_")
	if r, ok := aliases[key]; ok {
		return r, nil
	}
	return "", ErrUnknown
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case User, StationStaff, StationMaster, RPFAdmin, SuperAdmin:
		return true
	}
	return false
}

// RequiresStation reports whether sessions with this role must carry a station.
func (r Role) RequiresStation() bool {
	return r == StationStaff || r == StationMaster
}

// IsStationLevel reports whether the role works inside a single station.
func (r Role) IsStationLevel() bool {
	return r.RequiresStation()
}

// IsAdmin reports whether the role has national oversight.
func (r Role) IsAdmin() bool {
	return r == RPFAdmin || r == SuperAdmin
}

// Label is the human readable name.
func (r Role) Label() string {
	switch r {
	case User:
		return "Passenger"
	case StationStaff:
		return "Station Staff"
	case StationMaster:
		return "Station Master"
	case RPFAdmin:
		return "RPF Admin"
	case SuperAdmin:
		return "Super Admin"
	}
	return string(r)
}

func (r Role) String() string {
	return string(r)
}

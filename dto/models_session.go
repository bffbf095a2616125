package dto

// UserRecord is the server-defined account object. The client treats it as an
// opaque bag of fields; a non-nil record implies an authenticated session.
type UserRecord map[string]any

// StringField returns the named field when it is a string, else "".
func (u UserRecord) StringField(key string) string {
	if u == nil {
		return ""
	}
	if v, ok := u[key].(string); ok {
		return v
	}
	return ""
}

// Merge shallow-merges partial into a copy of u and returns the copy. The
// receiver is never mutated so snapshots held by callers stay stable.
func (u UserRecord) Merge(partial map[string]any) UserRecord {
	out := make(UserRecord, len(u)+len(partial))
	for k, v := range u {
		out[k] = v
	}
	for k, v := range partial {
		out[k] = v
	}
	return out
}

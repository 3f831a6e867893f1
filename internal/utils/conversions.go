package utils

// ToStringSlice keeps the string elements of a decoded JSON array.
func ToStringSlice(slice []any) []string {
	stringSlice := make([]string, 0)
	for _, v := range slice {
		if s, ok := v.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}

// ToStringList normalises a claim value that may be a single string or a list.
func ToStringList(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		return ToStringSlice(v)
	}
	return nil
}

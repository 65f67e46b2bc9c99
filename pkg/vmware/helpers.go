package vmware

import "fmt"

func missingPrivileges(username string, granted, required []string) error {
	grantedMap := make(map[string]bool, len(granted))
	for _, p := range granted {
		grantedMap[p] = true
	}

	var missing []string
	for _, req := range required {
		if !grantedMap[req] {
			missing = append(missing, req)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("user %s is missing required privileges: %v", username, missing)
	}

	return nil
}

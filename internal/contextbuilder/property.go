package contextbuilder

import (
	"fmt"
	"strings"

	"github.com/airbnblite/airbot/internal/model"
)

const noHostNotes = "(No additional information was provided by the host for this property)"

// Property renders a listing and its host contact.
func Property(p *model.Property, host *model.HostInfo) string {
	if p == nil {
		return "Property Details:\nNo property details are available."
	}

	var sb strings.Builder
	sb.WriteString("Property Details:\n")
	fmt.Fprintf(&sb, "- Title: %s\n", p.Title)
	fmt.Fprintf(&sb, "- Location: %s\n", p.Location)
	fmt.Fprintf(&sb, "- Description: %s\n", p.Description)
	if len(p.Amenities) > 0 {
		fmt.Fprintf(&sb, "- Amenities: %s\n", strings.Join(p.Amenities, ", "))
	} else {
		sb.WriteString("- Amenities: none listed\n")
	}

	sb.WriteString("\nProperty Information from Host:\n")
	if notes := strings.TrimSpace(p.PropertyInfo); notes != "" {
		sb.WriteString(notes)
	} else {
		sb.WriteString(noHostNotes)
	}
	sb.WriteString("\n\n")
	sb.WriteString(hostContact(host))
	return sb.String()
}

func hostContact(host *model.HostInfo) string {
	if host == nil || (host.Name == "" && host.Email == "") {
		return "Host Contact: not available"
	}
	switch {
	case host.Name == "":
		return "Host Contact: " + host.Email
	case host.Email == "":
		return "Host Contact: " + host.Name
	default:
		return fmt.Sprintf("Host Contact: %s (%s)", host.Name, host.Email)
	}
}

// Package profiles registers the built-in cleaning profiles with the core
// registry. Import it for side effects.
package profiles

import "github.com/JonMunkholm/csvclean/internal/core"

func init() {
	registerDefault()
	registerSfdcContacts()
	registerHubspotContacts()
	registerNewsletter()
}

func registerDefault() {
	core.Register(core.Profile{
		Key:         "default",
		Group:       "General",
		Label:       "Default",
		Description: "email, firstname and phone columns; duplicates removed",
		Options:     core.DefaultOptions(),
	})
}

func registerSfdcContacts() {
	opts := core.DefaultOptions()
	opts.Select = []string{"First Name", "Last Name", "Email", "Phone", "Account Name", "Mailing State"}
	opts.NameColumn = "First Name"

	core.Register(core.Profile{
		Key:         "sfdc_contacts",
		Group:       "SFDC",
		Label:       "Contacts",
		Description: "Salesforce contact report export",
		Options:     opts,
	})
}

func registerHubspotContacts() {
	opts := core.DefaultOptions()
	opts.EmailColumn = "Email"
	opts.NameColumn = "First Name"
	opts.PhoneColumn = "Phone Number"

	core.Register(core.Profile{
		Key:         "hubspot_contacts",
		Group:       "HubSpot",
		Label:       "Contacts",
		Description: "HubSpot contact export",
		Options:     opts,
	})
}

func registerNewsletter() {
	core.Register(core.Profile{
		Key:         "newsletter",
		Group:       "General",
		Label:       "Newsletter list",
		Description: "email only; keeps every column",
		Options: core.Options{
			EmailColumn: "email",
			Dedupe:      true,
		},
	})
}

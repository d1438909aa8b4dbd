package profiles

import (
	"testing"

	"github.com/JonMunkholm/csvclean/internal/core"
)

func TestProfilesRegistered(t *testing.T) {
	for _, key := range []string{"default", "sfdc_contacts", "hubspot_contacts", "newsletter"} {
		p, ok := core.Get(key)
		if !ok {
			t.Errorf("profile %q not registered", key)
			continue
		}
		if err := p.Options.Validate(); err != nil {
			t.Errorf("profile %q has invalid options: %v", key, err)
		}
	}
}

func TestProfilesSortedByGroup(t *testing.T) {
	all := core.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].Group > all[i].Group {
			t.Errorf("profiles not sorted by group: %q before %q", all[i-1].Group, all[i].Group)
		}
	}
}

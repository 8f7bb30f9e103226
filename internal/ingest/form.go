package ingest

import (
	"mcpdock/internal/api"
	"mcpdock/internal/draft"
)

// FormValues is the flat field set of the single-server editing form. The
// two mapping functions below are the only places drafts and form state are
// converted; they are invoked at well-defined transition points (type
// switch, ingest-apply) rather than through implicit re-binding.
type FormValues struct {
	Name             string
	Kind             api.ServerKind
	Command          string
	Args             []string
	Env              []draft.KVPair
	URL              string
	Headers          []draft.KVPair
	URLParams        []draft.KVPair
	RegistryServerID string
	Meta             *api.Meta
}

// ToFormValues pre-fills the form from a draft, e.g. after a single-entry
// bundle was ingested. Key-value maps expand into sorted pair lists.
func ToFormValues(d draft.Draft) FormValues {
	return FormValues{
		Name:             d.Name,
		Kind:             d.Kind,
		Command:          d.Command,
		Args:             append([]string(nil), d.Args...),
		Env:              draft.PairsFromMap(d.Env),
		URL:              d.URL,
		Headers:          draft.PairsFromMap(d.Headers),
		URLParams:        draft.PairsFromMap(d.URLParams),
		RegistryServerID: d.RegistryServerID,
		Meta:             d.Meta,
	}
}

// FromFormValues builds a validated draft from submitted form state. It
// runs the full builder normalization, so a validation failure here aborts
// submission before the pipeline is involved.
func FromFormValues(v FormValues) (draft.Draft, error) {
	return draft.New(draft.Params{
		Name:             v.Name,
		Kind:             v.Kind,
		Command:          v.Command,
		Args:             v.Args,
		Env:              v.Env,
		URL:              v.URL,
		Headers:          v.Headers,
		URLParams:        v.URLParams,
		RegistryServerID: v.RegistryServerID,
		Meta:             v.Meta,
	})
}

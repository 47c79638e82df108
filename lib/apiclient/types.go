// Copyright 2026 The PMIS Authors
// SPDX-License-Identifier: Apache-2.0

package apiclient

// Role is the authorization role carried by a session. The backend
// knows exactly two.
type Role string

const (
	// RoleAdmin may use the administrative database screens.
	RoleAdmin Role = "admin"
	// RoleRegular is the default consultation role.
	RoleRegular Role = "regular"
)

// LoginResult is the auth endpoint's success payload.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
	Role        Role   `json:"role"`
}

// ProjectLite is the quick-list projection of a project: just enough
// to populate a picker.
type ProjectLite struct {
	ID   int    `json:"idprojet"`
	Code string `json:"code_projet"`
}

// Project is the full project record.
type Project struct {
	ID           int      `json:"idprojet"`
	Code         string   `json:"code_projet"`
	Title        *string  `json:"intitule_projet"`
	Description  *string  `json:"description_projet"`
	PlannedStart *string  `json:"date_demarrage_prevue"`
	PlannedEnd   *string  `json:"date_fin_prevue"`
	ActualStart  *string  `json:"date_demarrage_reelle"`
	ActualEnd    *string  `json:"date_fin_reelle_projet"`
	State        *string  `json:"etat"`
	Budget       *float64 `json:"budget_previsionnel"`
	Currency     *string  `json:"devise"`
}

// Department is an administrative department touched by a project.
type Department struct {
	ID   int     `json:"iddepartement"`
	Name string  `json:"nom_departement"`
	Code *string `json:"code_departement"`
}

// Activity is a project activity.
type Activity struct {
	ID           int     `json:"idactivite"`
	Title        *string `json:"titre_act"`
	Description  *string `json:"description_act"`
	PlannedStart *string `json:"dateDemarragePrevue_act"`
	PlannedEnd   *string `json:"dateFinPrevue_act"`
}

// PersonnelLite is the personnel projection used by pickers. The
// upstream list endpoint has been observed to return duplicate rows
// for the same idpersonnel; consumers deduplicate by ID.
type PersonnelLite struct {
	ID        int     `json:"idpersonnel"`
	Name      string  `json:"nom_personnel"`
	Function  *string `json:"fonction"`
	Email     *string `json:"email"`
	Telephone *string `json:"telephone"`
	Type      *string `json:"type"`
}

// PersonnelRow is the detail-page personnel projection (contract
// dates included, no identifier — the backend flattens the join).
type PersonnelRow struct {
	Name          string  `json:"nom"`
	Function      *string `json:"fonction"`
	Email         *string `json:"email"`
	Telephone     *string `json:"telephone"`
	Type          *string `json:"type"`
	SignatureDate *string `json:"date_signature"`
	ContractStart *string `json:"date_debut_contrat"`
	ContractEnd   *string `json:"date_fin_contrat"`
	ContractTerm  *int    `json:"duree_contrat"`
}

// CommandeLite is the procurement-order projection used by pickers.
type CommandeLite struct {
	ID     int    `json:"idcommande"`
	Label  string `json:"libelle"`
	Nature string `json:"nature"`
}

// Commande is the detail-page procurement-order row.
type Commande struct {
	ID        int      `json:"idcommande"`
	Amount    *float64 `json:"montant_commande"`
	Label     *string  `json:"libelle_commande"`
	Nature    *string  `json:"nature_commande"`
	Type      *string  `json:"type_commande"`
	Procedure *string  `json:"type_procedure"`
}

// SoumissionnaireLite is the bidder projection used by pickers.
type SoumissionnaireLite struct {
	ID   int    `json:"idsoumissionnaire"`
	Name string `json:"nom"`
	NIF  string `json:"nif"`
}

// SoumissionnaireRow is a bidder attached to a procurement order.
type SoumissionnaireRow struct {
	Name      string  `json:"nom_soumissionnaire"`
	NIF       *string `json:"nif"`
	Address   *string `json:"adresse"`
	Telephone *string `json:"telephone"`
	Status    *string `json:"statut"`
	Email     *string `json:"email"`
}

// TitulaireRow is an awarded bidder on a procurement order.
type TitulaireRow struct {
	Name             string  `json:"nom_soumissionnaire"`
	NIF              *string `json:"nif"`
	Address          *string `json:"adresse"`
	Telephone        *string `json:"telephone"`
	Status           *string `json:"statut"`
	Email            *string `json:"email"`
	SubmissionDate   *string `json:"date_soumission"`
	SubmissionStatus *string `json:"statut_soumission"`
}

// Transaction is a financial transaction, joined with its personnel or
// activity label by the backend.
type Transaction struct {
	ID            int     `json:"idtransaction"`
	PersonnelID   *int    `json:"idpersonnel"`
	ActivityID    *int    `json:"idactivite"`
	Amount        *string `json:"montant_transaction"`
	Type          *string `json:"type_transaction"`
	ReceiverType  *string `json:"receveur_type"`
	PaymentType   *string `json:"type_paiement"`
	Date          *string `json:"date_transaction"`
	Comment       *string `json:"commentaire"`
	Currency      *string `json:"devise"`
	ProjectID     *int    `json:"idprojet"`
	PersonnelName *string `json:"nom_personnel"`
	ActivityTitle *string `json:"titre_act"`
	ProjectCode   *string `json:"code_projet"`
}

// Event is a discrete dated event attached to exactly one parent
// entity (activity, personnel, commande, bidder, transaction, or the
// project itself). Never re-parented.
type Event struct {
	ID            int     `json:"idevenement"`
	Type          string  `json:"type_evenement"`
	Date          *string `json:"date_evenement"`
	PlannedDate   *string `json:"date_prevue"`
	Description   *string `json:"description_evenement"`
	Status        *string `json:"statut_evenement"`
	CompletedDate *string `json:"date_realisee"`
}

// Document is a file attached to an event. StoragePath is the backend
// storage key; its extension is recovered when deriving a download
// file name.
type Document struct {
	ID          int    `json:"iddocument"`
	Title       string `json:"titre_document"`
	StoragePath string `json:"chemin"`
	AddedDate   string `json:"date_ajout"`
	URL         string `json:"url"`
}

// Implantation is a site where an activity is implemented.
type Implantation struct {
	SiteID         int    `json:"idsite"`
	SiteName       string `json:"nom_site"`
	DepartmentID   int    `json:"iddepartement"`
	DepartmentName string `json:"nom_departement"`
}

// SuiviRow is an activity tracking indicator.
type SuiviRow struct {
	Indicator string   `json:"libelle_indicateur"`
	Base      *float64 `json:"niveau_base"`
	Target    *float64 `json:"niveau_cible"`
	Current   *float64 `json:"niveau_actuel"`
	Status    string   `json:"statut_indicateur"`
}

// ResponsableRow is a personnel responsibility on an activity.
type ResponsableRow struct {
	Name           string  `json:"nom_personnel"`
	Function       *string `json:"fonction"`
	Email          *string `json:"email"`
	Telephone      *string `json:"telephone"`
	Type           *string `json:"type"`
	Start          *string `json:"date_debut_act"`
	End            *string `json:"date_fin_act"`
	DurationStatus string  `json:"statut_duree"`
}

// Exercice is a fiscal year attached to an activity.
type Exercice struct {
	Year  int     `json:"annee"`
	Start *string `json:"date_debut_exe"`
	End   *string `json:"date_fin_exe"`
}

// OptionID implements the cascade option contract.
func (p ProjectLite) OptionID() int { return p.ID }

// OptionLabel implements the cascade option contract.
func (p ProjectLite) OptionLabel() string { return p.Code }

func (a Activity) OptionID() int { return a.ID }
func (a Activity) OptionLabel() string { return stringOr(a.Title, "(sans titre)") }

func (p PersonnelLite) OptionID() int { return p.ID }
func (p PersonnelLite) OptionLabel() string { return p.Name }

func (c CommandeLite) OptionID() int { return c.ID }
func (c CommandeLite) OptionLabel() string { return c.Label }

func (s SoumissionnaireLite) OptionID() int { return s.ID }
func (s SoumissionnaireLite) OptionLabel() string { return s.Name }

func (t Transaction) OptionID() int { return t.ID }
func (t Transaction) OptionLabel() string {
	label := stringOr(t.Type, "transaction")
	if t.Amount != nil && *t.Amount != "" {
		label += " " + *t.Amount
		if t.Currency != nil {
			label += " " + *t.Currency
		}
	}
	return label
}

// stringOr dereferences an optional string, substituting fallback for
// nil or empty.
func stringOr(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}

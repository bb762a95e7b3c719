package models

// Org identifies a ministry/agency ("K/L") participating in the program.
type Org struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OrgCatalogue is the fixed set of participating ministries. Report and user
// organization codes must come from this set.
var OrgCatalogue = []Org{
	{ID: "KEMENKO_PMK", Name: "Kementerian Koordinator Bidang Pembangunan Manusia dan Kebudayaan"},
	{ID: "KEMENDIKBUDRISTEK", Name: "Kementerian Pendidikan, Kebudayaan, Riset, dan Teknologi"},
	{ID: "KEMENAG", Name: "Kementerian Agama"},
	{ID: "KEMENDES_PDTT", Name: "Kementerian Desa, Pembangunan Daerah Tertinggal, dan Transmigrasi"},
	{ID: "KEMENKES", Name: "Kementerian Kesehatan"},
	{ID: "KEMENDUKBANGGA", Name: "Kementerian Pembangunan Kependudukan dan Keluarga Berencana Nasional"},
	{ID: "KEMENSOS", Name: "Kementerian Sosial"},
	{ID: "KEMENPPPA", Name: "Kementerian Pemberdayaan Perempuan dan Perlindungan Anak"},
	{ID: "KEMENDAGRI", Name: "Kementerian Dalam Negeri"},
	{ID: "BAPPENAS", Name: "Badan Perencanaan Pembangunan Nasional"},
	{ID: "BPS", Name: "Badan Pusat Statistik"},
}

// ValidOrgID reports whether id belongs to the catalogue.
func ValidOrgID(id string) bool {
	for _, org := range OrgCatalogue {
		if org.ID == id {
			return true
		}
	}
	return false
}

// OrgName resolves the display name for a catalogue id, empty when unknown.
func OrgName(id string) string {
	for _, org := range OrgCatalogue {
		if org.ID == id {
			return org.Name
		}
	}
	return ""
}

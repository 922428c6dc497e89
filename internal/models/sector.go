package models

// Sector is the fixed sector enumeration articles are classified into.
// Classification happens during enrichment; articles with no sector keyword
// match fall back to SectorGeneral.
type Sector string

const (
	SectorAgriculture   Sector = "agriculture"
	SectorConstruction  Sector = "construction"
	SectorEnergy        Sector = "energy"
	SectorFinance       Sector = "finance"
	SectorGeneral       Sector = "general"
	SectorGovernment    Sector = "government"
	SectorHealthcare    Sector = "healthcare"
	SectorManufacturing Sector = "manufacturing"
	SectorTechnology    Sector = "technology"
	SectorTourism       Sector = "tourism"
)

// AllSectors returns the full sector enumeration in lexical order.
func AllSectors() []Sector {
	return []Sector{
		SectorAgriculture,
		SectorConstruction,
		SectorEnergy,
		SectorFinance,
		SectorGeneral,
		SectorGovernment,
		SectorHealthcare,
		SectorManufacturing,
		SectorTechnology,
		SectorTourism,
	}
}

// IsValid reports whether s is a member of the sector enumeration.
func (s Sector) IsValid() bool {
	for _, v := range AllSectors() {
		if s == v {
			return true
		}
	}
	return false
}

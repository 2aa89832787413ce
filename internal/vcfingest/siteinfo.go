// Package vcfingest implements the pull interface sav.Writer's caller
// feeds from: a sequential scan over a VCF/VCF.GZ source that converts
// each site line into per-haplotype AlleleStatus observations.
package vcfingest

import "github.com/pinotree/savvy"

// SiteInfo carries the per-record metadata a VCF data line provides
// beyond the dense allele observations: the fields that feed directly
// into sav.NewMarkerFromDense's position/ref/alt arguments.
type SiteInfo struct {
	Chromosome string
	Position   uint64
	ID         string
	Ref        []byte
	Alt        []byte
}

// DataFormat selects which VCF FORMAT field is consulted to derive
// per-haplotype AlleleStatus: GT (genotype calls) or HDS (haplotype
// dosage, a continuous value thresholded to a status).
type DataFormat uint8

const (
	DataFormatGT DataFormat = iota
	DataFormatHDS
)

func (f DataFormat) String() string {
	switch f {
	case DataFormatGT:
		return "GT"
	case DataFormatHDS:
		return "HDS"
	default:
		return "unknown"
	}
}

// ParseDataFormat maps the CLI's --data-format flag value to a
// DataFormat, defaulting to GT on anything unrecognized.
func ParseDataFormat(s string) DataFormat {
	if s == "HDS" {
		return DataFormatHDS
	}
	return DataFormatGT
}

// MarkerFromSite bridges a SiteInfo and a dense allele view into a
// *sav.Marker, condensing dense into a sparse vector along the way. This
// is the glue runImportStream uses between a pulled VCF record and the
// writer's Write call.
func MarkerFromSite(site SiteInfo, dense []sav.AlleleStatus) *sav.Marker {
	return sav.NewMarkerFromDense(site.Position, site.Ref, site.Alt, dense)
}

package property

import "strings"

// Condition of the building. Codes match the listing form values.
type Condition string

const (
	ConditionUnknown         Condition = ""
	ConditionNeedsRenovation Condition = "butuh_renovasi"
	ConditionLightRenovation Condition = "renovasi_ringan"
	ConditionGood            Condition = "baik"
	ConditionNew             Condition = "baru"
)

var conditionCodes = map[Condition]float64{
	ConditionNeedsRenovation: 1,
	ConditionLightRenovation: 2,
	ConditionGood:            3,
	ConditionNew:             4,
}

func ParseCondition(s string) Condition {
	c := Condition(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := conditionCodes[c]; ok {
		return c
	}
	return ConditionUnknown
}

// Code returns the numeric encoding used by the price model.
// Unknown values map to the 0 bucket.
func (c Condition) Code() float64 {
	return conditionCodes[c]
}

// Certificate is the land ownership certificate type.
type Certificate string

const (
	CertificateUnknown Certificate = ""
	CertificateGirik   Certificate = "girik"
	CertificateHGB     Certificate = "hgb"
	CertificateSHM     Certificate = "shm"
)

var certificateCodes = map[Certificate]float64{
	CertificateGirik: 1,
	CertificateHGB:   2,
	CertificateSHM:   3,
}

func ParseCertificate(s string) Certificate {
	c := Certificate(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := certificateCodes[c]; ok {
		return c
	}
	return CertificateUnknown
}

func (c Certificate) Code() float64 {
	return certificateCodes[c]
}

// RoadType describes the access road in front of the property.
type RoadType string

const (
	RoadUnknown RoadType = ""
	RoadAlley   RoadType = "gang_kecil"
	RoadMedium  RoadType = "jalan_sedang"
	RoadMain    RoadType = "jalan_besar"
)

var roadCodes = map[RoadType]float64{
	RoadAlley:  1,
	RoadMedium: 2,
	RoadMain:   3,
}

func ParseRoadType(s string) RoadType {
	r := RoadType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roadCodes[r]; ok {
		return r
	}
	return RoadUnknown
}

func (r RoadType) Code() float64 {
	return roadCodes[r]
}

// Zone is the named area of the city a property sits in.
type Zone string

const (
	ZoneUnknown    Zone = ""
	ZoneCityCenter Zone = "pusat_kota"
	ZoneKarangRaja Zone = "karang_raja"
	ZoneGunungIbul Zone = "gunung_ibul"
	ZoneRambutan   Zone = "rambutan"
	ZoneTanjungApi Zone = "tanjung_api"
	ZoneCambai     Zone = "cambai"
)

var zoneTiers = map[Zone]float64{
	ZoneCityCenter: 4,
	ZoneKarangRaja: 3,
	ZoneGunungIbul: 3,
	ZoneRambutan:   2,
	ZoneTanjungApi: 2,
	ZoneCambai:     1,
}

func ParseZone(s string) Zone {
	z := Zone(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := zoneTiers[z]; ok {
		return z
	}
	return ZoneUnknown
}

// Tier returns the zone desirability tier, 0 for unknown zones.
func (z Zone) Tier() float64 {
	return zoneTiers[z]
}

// Attributes are the raw inputs to a price prediction request.
// Immutable once constructed for a given request.
type Attributes struct {
	LandArea         float64     `json:"luas_tanah"`
	BuildingArea     float64     `json:"luas_bangunan"`
	Bedrooms         int         `json:"kamar_tidur"`
	Bathrooms        int         `json:"kamar_mandi"`
	Carports         int         `json:"carport"`
	YearBuilt        int         `json:"tahun_dibangun"`
	Floors           int         `json:"lantai"`
	SchoolDistance   float64     `json:"jarak_sekolah"`
	HospitalDistance float64     `json:"jarak_rs"`
	MarketDistance   float64     `json:"jarak_pasar"`
	RoadType         RoadType    `json:"jenis_jalan"`
	Condition        Condition   `json:"kondisi"`
	Certificate      Certificate `json:"sertifikat"`
	Zone             Zone        `json:"kawasan"`
}

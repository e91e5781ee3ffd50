package hafas

import (
	"bytes"
	"encoding/json"
)

// The mgate.exe protocol wraps every call in the same envelope: a static auth
// and client block plus a one-element service request list.
type envelope struct {
	Auth    authBlock   `json:"auth"`
	Client  clientBlock `json:"client"`
	Ver     string      `json:"ver"`
	Ext     string      `json:"ext"`
	Lang    string      `json:"lang"`
	SvcReqL []svcReq    `json:"svcReqL"`
}

type authBlock struct {
	Type string `json:"type"`
	Aid  string `json:"aid"`
}

type clientBlock struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type svcReq struct {
	Meth string `json:"meth"`
	Req  any    `json:"req"`
}

type topResponse struct {
	SvcResL []svcRes `json:"svcResL"`
}

type svcRes struct {
	Meth   string          `json:"meth"`
	Err    string          `json:"err"`
	ErrTxt string          `json:"errTxt"`
	Res    json.RawMessage `json:"res"`
}

// oneOrMany absorbs the upstream's habit of encoding a single record as a bare
// object instead of a one-element array. Applying it at the wire layer keeps
// every downstream consumer working on plain slices.
type oneOrMany[T any] []T

func (l *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*l = oneOrMany[T]{item}
	return nil
}

// LocMatch

type locMatchRes struct {
	Match struct {
		LocL oneOrMany[rawLoc] `json:"locL"`
	} `json:"match"`
}

type rawLoc struct {
	Lid   string  `json:"lid"`
	Name  string  `json:"name"`
	ExtID string  `json:"extId"`
	Crd   *rawCrd `json:"crd"`
}

// rawCrd carries microdegree integers, x = longitude and y = latitude.
type rawCrd struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// TripSearch

type tripSearchRes struct {
	Common  rawCommon                `json:"common"`
	OutConL oneOrMany[rawConnection] `json:"outConL"`
}

type rawCommon struct {
	LocL  oneOrMany[rawLoc]     `json:"locL"`
	ProdL oneOrMany[rawProduct] `json:"prodL"`
}

type rawProduct struct {
	Name string `json:"name"`
}

type rawConnection struct {
	Date string                `json:"date"`
	Dep  rawStopEvent          `json:"dep"`
	Arr  rawStopEvent          `json:"arr"`
	Chg  int                   `json:"chg"`
	SecL oneOrMany[rawSection] `json:"secL"`
}

// rawStopEvent holds both departure-side (d*) and arrival-side (a*) fields;
// which half is populated depends on where the event sits.
type rawStopEvent struct {
	DTimeS string `json:"dTimeS"`
	DTimeR string `json:"dTimeR"`
	ATimeS string `json:"aTimeS"`
	ATimeR string `json:"aTimeR"`
	DCncl  bool   `json:"dCncl"`
	ACncl  bool   `json:"aCncl"`
	LocX   *int   `json:"locX"`
}

type rawSection struct {
	Type string       `json:"type"`
	Dep  rawStopEvent `json:"dep"`
	Arr  rawStopEvent `json:"arr"`
	Jny  *rawJourney  `json:"jny"`
	Gis  *rawGis      `json:"gis"`
}

type rawJourney struct {
	ProdX  *int     `json:"prodX"`
	DirTxt string   `json:"dirTxt"`
	Date   string   `json:"date"`
	Poly   *rawPoly `json:"poly"`
}

type rawGis struct {
	DurS string   `json:"durS"`
	Poly *rawPoly `json:"poly"`
}

// rawPoly carries the leg geometry as [lon, lat] pairs.
type rawPoly struct {
	Crd [][]float64 `json:"crd"`
}

// StationBoard

type stationBoardRes struct {
	Common rawCommon                  `json:"common"`
	JnyL   oneOrMany[rawBoardJourney] `json:"jnyL"`
}

type rawBoardJourney struct {
	Date    string       `json:"date"`
	ProdX   *int         `json:"prodX"`
	DirTxt  string       `json:"dirTxt"`
	StbStop rawStopEvent `json:"stbStop"`
}

package domain

// Station is the monitoring location metadata returned by GIOS.
type Station struct {
	ID            int64  `json:"id"`
	Name          string `json:"stationName"`
	Lat           string `json:"gegrLat"`
	Lon           string `json:"gegrLon"`
	City          *City  `json:"city"`
	AddressStreet string `json:"addressStreet"`
}

type City struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SensorInfo describes one measured parameter at a station. ID is nil when
// the upstream payload carried no identifier.
type SensorInfo struct {
	ID        *int64 `json:"id"`
	StationID int64  `json:"stationId"`
	Param     Param  `json:"param"`
}

type Param struct {
	Name    string `json:"paramName"`
	Formula string `json:"paramFormula"`
	Code    string `json:"paramCode"`
	ID      int64  `json:"idParam"`
}

// Entity is the static description of a sensor entity, used when
// announcing entities to downstream consumers.
type Entity struct {
	UniqueID    string `json:"unique_id,omitempty"`
	Name        string `json:"name"`
	StationID   int64  `json:"station_id"`
	StationName string `json:"station_name"`
	ParamCode   string `json:"param_code"`
	Unit        string `json:"unit"`
	Icon        string `json:"icon"`
}

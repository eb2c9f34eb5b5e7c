package service

import "time"

// diaOperativo returns the current business day (YYYY-MM-DD) in the
// configured zone. All "open today" checks and daily aggregates use this
// boundary, so a sesión abierta ayer queda inhabilitada a medianoche local.
func diaOperativo(loc *time.Location) string {
	return time.Now().In(loc).Format("2006-01-02")
}

// rangoDia returns [00:00, 24:00) of the given business day in loc.
func rangoDia(dia string, loc *time.Location) (time.Time, time.Time, error) {
	desde, err := time.ParseInLocation("2006-01-02", dia, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return desde, desde.AddDate(0, 0, 1), nil
}

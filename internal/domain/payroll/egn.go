package payroll

import "time"

var egnWeights = [9]int{2, 4, 8, 5, 10, 9, 7, 3, 6}

// BirthYearFromEGN decodes the birth year from a Bulgarian personal number (ЕГН).
// It reports false when the value is not ten digits, the date is impossible or the
// checksum does not match.
func BirthYearFromEGN(egn string) (int, bool) {
	if len(egn) != 10 {
		return 0, false
	}
	var d [10]int
	for i := 0; i < 10; i++ {
		c := egn[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		d[i] = int(c - '0')
	}

	sum := 0
	for i, w := range egnWeights {
		sum += d[i] * w
	}
	check := sum % 11
	if check == 10 {
		check = 0
	}
	if check != d[9] {
		return 0, false
	}

	yy := d[0]*10 + d[1]
	mm := d[2]*10 + d[3]
	dd := d[4]*10 + d[5]
	year := 1900 + yy
	switch {
	case mm > 40:
		year, mm = 2000+yy, mm-40
	case mm > 20:
		year, mm = 1800+yy, mm-20
	}
	if mm < 1 || mm > 12 || dd < 1 {
		return 0, false
	}
	date := time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	if date.Day() != dd || int(date.Month()) != mm {
		return 0, false
	}
	return year, true
}

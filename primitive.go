package chakracore

// Boolean is a Value known to be a boolean.
type Boolean Value

// AsValue implements Valuer.
func (b Boolean) AsValue() Value {
	return Value(b)
}

// ToBool returns the Go bool.
func (b Boolean) ToBool() (bool, error) {
	engine, err := Value(b).engine("boolean to bool")
	if err != nil {
		return false, err
	}
	var out bool
	if err := classify("boolean to bool", engine.BooleanToBool(b.ref, &out)); err != nil {
		return false, err
	}
	return out, nil
}

// Number is a Value known to be a number.
type Number Value

// AsValue implements Valuer.
func (n Number) AsValue() Value {
	return Value(n)
}

// ToInt32 applies the script ToInt32 conversion: the value is truncated and wrapped into
// the int32 range, and NaN or an infinity becomes 0.
func (n Number) ToInt32() (int32, error) {
	engine, err := Value(n).engine("number to int")
	if err != nil {
		return 0, err
	}
	var out int32
	if err := classify("number to int", engine.NumberToInt(n.ref, &out)); err != nil {
		return 0, err
	}
	return out, nil
}

// ToFloat64 returns the number as a float64.
func (n Number) ToFloat64() (float64, error) {
	engine, err := Value(n).engine("number to double")
	if err != nil {
		return 0, err
	}
	var out float64
	if err := classify("number to double", engine.NumberToDouble(n.ref, &out)); err != nil {
		return 0, err
	}
	return out, nil
}

var (
	_ Valuer = Boolean{}
	_ Valuer = Number{}
)

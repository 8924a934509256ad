package main

import (
	"flag"
	"strconv"

	"carrental/internal/app/dto"
)

// floatFlag remembers whether it was given so that an absent bound stays nil.
type floatFlag struct {
	value float64
	set   bool
}

func (f *floatFlag) String() string {
	if f == nil || !f.set {
		return ""
	}
	return strconv.FormatFloat(f.value, 'f', -1, 64)
}

func (f *floatFlag) Set(raw string) error {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	f.value, f.set = v, true
	return nil
}

func (f *floatFlag) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}

func optionalFloat(fs *flag.FlagSet, name, usage string) *floatFlag {
	f := &floatFlag{}
	fs.Var(f, name, usage)
	return f
}

// parseVehicleInput only fills the fields passed on the command line, so the
// same flags serve create and partial update.
func parseVehicleInput(name string, args []string) (dto.VehicleInput, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	vmake := fs.String("make", "", "manufacturer")
	model := fs.String("model", "", "model name")
	year := fs.Int("year", 0, "model year")
	category := fs.String("category", "", "category, e.g. SUV")
	transmission := fs.String("transmission", "", "Automatic or Manual")
	fuel := fs.String("fuel", "", "fuel type")
	seats := fs.Int("seats", 0, "number of seats")
	price := fs.Float64("price", 0, "price per day")
	image := fs.String("image-url", "", "photo URL")
	available := fs.Bool("available", true, "list the vehicle in the catalog")
	if err := fs.Parse(args); err != nil {
		return dto.VehicleInput{}, err
	}
	var in dto.VehicleInput
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "make":
			in.Make = dto.Ptr(*vmake)
		case "model":
			in.Model = dto.Ptr(*model)
		case "year":
			in.Year = dto.Ptr(*year)
		case "category":
			in.Category = dto.Ptr(*category)
		case "transmission":
			in.Transmission = dto.Ptr(*transmission)
		case "fuel":
			in.FuelType = dto.Ptr(*fuel)
		case "seats":
			in.Seats = dto.Ptr(*seats)
		case "price":
			in.PricePerDay = dto.Ptr(*price)
		case "image-url":
			in.ImageURL = dto.Ptr(*image)
		case "available":
			in.Available = dto.Ptr(*available)
		}
	})
	return in, nil
}

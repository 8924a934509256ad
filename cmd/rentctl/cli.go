package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"carrental/internal/app/dto"
	"carrental/internal/domain/pricing"
	"carrental/internal/infra/apiclient"
	"carrental/internal/infra/config"
	"carrental/internal/infra/obs"
	"carrental/internal/infra/payment"
	"carrental/internal/infra/security"
	"carrental/internal/infra/session"
)

var errUsage = errors.New("usage: rentctl [-api URL] [-token TOKEN] [-json] [-v] <vehicles|vehicle|quote|book|bookings|cancel|pay|admin|token> ...")

var errAdminRequired = errors.New("admin access required")

type cli struct {
	client  *apiclient.Client
	session *session.Provider
	payer   payment.Simulator
	secret  string
	out     io.Writer
	asJSON  bool
	now     func() time.Time
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	global := flag.NewFlagSet("rentctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	apiURL := global.String("api", cfg.APIURL, "base URL of the rental API")
	token := global.String("token", cfg.Token, "bearer token of the signed-in user")
	asJSON := global.Bool("json", false, "print raw JSON")
	verbose := global.Bool("v", false, "log requests")
	if err := global.Parse(args); err != nil {
		return err
	}
	rest := global.Args()
	if len(rest) == 0 {
		return errUsage
	}

	logger := obs.NewCLILogger(*verbose)
	client, err := apiclient.New(apiclient.Config{
		BaseURL:    *apiURL,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Logger:     logger,
		UserAgent:  "rentctl",
	})
	if err != nil {
		return err
	}
	c := &cli{
		client:  client,
		session: session.NewStatic(*token),
		payer:   payment.Simulator{Delay: cfg.PaymentDelay},
		secret:  cfg.JWTSecret,
		out:     stdout,
		asJSON:  *asJSON,
		now:     time.Now,
	}
	return c.dispatch(ctx, rest[0], rest[1:])
}

func (c *cli) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "vehicles":
		return c.vehicles(ctx, args)
	case "vehicle":
		return c.vehicle(ctx, args)
	case "quote":
		return c.quote(ctx, args)
	case "book":
		return c.book(ctx, args)
	case "bookings":
		return c.bookings(ctx, args)
	case "cancel":
		return c.cancel(ctx, args)
	case "pay":
		return c.pay(ctx, args)
	case "admin":
		return c.admin(ctx, args)
	case "token":
		return c.token(args)
	default:
		return fmt.Errorf("unknown command %q\n%w", name, errUsage)
	}
}

func (c *cli) vehicles(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("vehicles", flag.ContinueOnError)
	vehicleType := fs.String("type", "", "category filter")
	transmission := fs.String("transmission", "", "transmission filter")
	minPrice := optionalFloat(fs, "min-price", "lowest daily rate")
	maxPrice := optionalFloat(fs, "max-price", "highest daily rate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	vehicles, err := c.client.ListVehicles(ctx, apiclient.VehicleFilters{
		Type:         *vehicleType,
		Transmission: *transmission,
		MinPrice:     minPrice.ptr(),
		MaxPrice:     maxPrice.ptr(),
	})
	if err != nil {
		return err
	}
	if c.asJSON {
		return c.printJSON(vehicles)
	}
	return c.printVehicles(vehicles)
}

func (c *cli) vehicle(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: rentctl vehicle <id>")
	}
	v, err := c.client.GetVehicle(ctx, args[0])
	if err != nil {
		return err
	}
	if c.asJSON {
		return c.printJSON(v)
	}
	return c.printVehicles([]dto.Vehicle{v})
}

// quote estimates a rental locally. The daily rate comes from -rate or from the vehicle.
func (c *cli) quote(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("quote", flag.ContinueOnError)
	vehicleID := fs.String("vehicle", "", "vehicle id")
	rate := optionalFloat(fs, "rate", "daily rate, skips the vehicle lookup")
	startRaw := fs.String("start", "", "pick-up date YYYY-MM-DD")
	endRaw := fs.String("end", "", "return date YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	start, end, err := parseDates(*startRaw, *endRaw)
	if err != nil {
		return err
	}
	perDay := rate.value
	if !rate.set {
		if *vehicleID == "" {
			return errors.New("quote needs -vehicle or -rate")
		}
		v, err := c.client.GetVehicle(ctx, *vehicleID)
		if err != nil {
			return err
		}
		perDay = v.PricePerDay
	}
	q := pricing.Calculate(start, end, perDay)
	if c.asJSON {
		return c.printJSON(map[string]any{"duration_days": q.DurationDays, "total_price": q.TotalPrice})
	}
	_, err = fmt.Fprintf(c.out, "%d day(s) x %.2f/day = %s\n", q.DurationDays, perDay, q.Display())
	return err
}

func (c *cli) book(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	vehicleID := fs.String("vehicle", "", "vehicle id")
	startRaw := fs.String("start", "", "pick-up date YYYY-MM-DD")
	endRaw := fs.String("end", "", "return date YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	token, err := c.session.AuthToken(ctx)
	if err != nil {
		return err
	}
	booking, err := c.client.CreateBooking(ctx, token, dto.CreateBookingRequest{
		VehicleID: *vehicleID,
		StartDate: *startRaw,
		EndDate:   *endRaw,
	})
	if err != nil {
		return err
	}
	if c.asJSON {
		return c.printJSON(booking)
	}
	if err := c.printBookings([]dto.Booking{booking}); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "pay with: rentctl pay %s\n", booking.ID)
	return err
}

func (c *cli) bookings(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.New("usage: rentctl bookings")
	}
	token, err := c.session.AuthToken(ctx)
	if err != nil {
		return err
	}
	bookings, err := c.client.ListMyBookings(ctx, token)
	if err != nil {
		return err
	}
	if c.asJSON {
		return c.printJSON(bookings)
	}
	return c.printBookings(bookings)
}

func (c *cli) cancel(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: rentctl cancel <booking-id>")
	}
	token, err := c.session.AuthToken(ctx)
	if err != nil {
		return err
	}
	booking, err := c.client.CancelBooking(ctx, token, args[0])
	if err != nil {
		return err
	}
	if c.asJSON {
		return c.printJSON(booking)
	}
	return c.printBookings([]dto.Booking{booking})
}

// pay charges the simulated card for a pending booking and confirms it with the API.
func (c *cli) pay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pay", flag.ContinueOnError)
	number := fs.String("card", payment.DemoCard.Number, "card number")
	expiry := fs.String("expiry", payment.DemoCard.Expiry, "expiry MM/YY")
	cvc := fs.String("cvc", payment.DemoCard.CVC, "security code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: rentctl pay [-card N -expiry MM/YY -cvc C] <booking-id>")
	}
	bookingID := fs.Arg(0)
	token, err := c.session.AuthToken(ctx)
	if err != nil {
		return err
	}
	mine, err := c.client.ListMyBookings(ctx, token)
	if err != nil {
		return err
	}
	var target *dto.Booking
	for i := range mine {
		if mine[i].ID == bookingID {
			target = &mine[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	fmt.Fprintf(c.out, "charging %.2f...\n", target.TotalAmount)
	intentID, err := c.payer.Charge(ctx, payment.Card{Number: *number, Expiry: *expiry, CVC: *cvc}, target.TotalAmount)
	if err != nil {
		return err
	}
	booking, err := c.client.ConfirmPayment(ctx, token, bookingID, intentID)
	if err != nil {
		return err
	}
	if c.asJSON {
		return c.printJSON(booking)
	}
	return c.printBookings([]dto.Booking{booking})
}

func (c *cli) admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: rentctl admin <add|update|delete|bookings> ...")
	}
	isAdmin, err := c.session.IsAdmin(ctx)
	if err != nil {
		return err
	}
	if !isAdmin {
		return errAdminRequired
	}
	token, err := c.session.AuthToken(ctx)
	if err != nil {
		return err
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "add":
		in, err := parseVehicleInput("admin add", rest)
		if err != nil {
			return err
		}
		v, err := c.client.AddVehicle(ctx, token, in)
		if err != nil {
			return err
		}
		return c.printVehicleResult(v)
	case "update":
		if len(rest) == 0 {
			return errors.New("usage: rentctl admin update <id> [fields]")
		}
		in, err := parseVehicleInput("admin update", rest[1:])
		if err != nil {
			return err
		}
		v, err := c.client.UpdateVehicle(ctx, token, rest[0], in)
		if err != nil {
			return err
		}
		return c.printVehicleResult(v)
	case "delete":
		if len(rest) != 1 {
			return errors.New("usage: rentctl admin delete <id>")
		}
		msg, err := c.client.DeleteVehicle(ctx, token, rest[0])
		if err != nil {
			return err
		}
		if msg == "" {
			msg = "Vehicle deleted"
		}
		_, err = fmt.Fprintln(c.out, msg)
		return err
	case "bookings":
		bookings, err := c.client.ListAllBookings(ctx, token)
		if err != nil {
			return err
		}
		if c.asJSON {
			return c.printJSON(bookings)
		}
		return c.printBookings(bookings)
	default:
		return fmt.Errorf("unknown admin command %q", sub)
	}
}

// token mints a development token signed with JWT_SECRET.
func (c *cli) token(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	user := fs.String("user", "", "user id (sub claim)")
	email := fs.String("email", "", "email claim")
	name := fs.String("name", "", "full name")
	admin := fs.Bool("admin", false, "grant the admin role")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	secret := fs.String("secret", c.secret, "signing secret")
	if err := fs.Parse(args); err != nil {
		return err
	}
	role := ""
	if *admin {
		role = "admin"
	}
	token, err := security.Issuer{Secret: *secret, TTL: *ttl, Now: c.now}.Issue(security.Identity{
		UserID: *user,
		Email:  *email,
		Name:   *name,
		Role:   role,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, token)
	return err
}

func (c *cli) printVehicleResult(v dto.Vehicle) error {
	if c.asJSON {
		return c.printJSON(v)
	}
	return c.printVehicles([]dto.Vehicle{v})
}

func (c *cli) printVehicles(vehicles []dto.Vehicle) error {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVEHICLE\tYEAR\tCATEGORY\tTRANSMISSION\tSEATS\tPER DAY\tAVAILABLE")
	for _, v := range vehicles {
		fmt.Fprintf(w, "%s\t%s %s\t%d\t%s\t%s\t%d\t%.2f\t%t\n",
			v.ID, v.Make, v.Model, v.Year, v.Category, v.Transmission, v.Seats, v.PricePerDay, v.Available)
	}
	return w.Flush()
}

func (c *cli) printBookings(bookings []dto.Booking) error {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVEHICLE\tFROM\tTO\tTOTAL\tSTATUS")
	for _, b := range bookings {
		vehicle := b.VehicleID
		if b.Vehicle != nil {
			vehicle = strings.TrimSpace(b.Vehicle.Make + " " + b.Vehicle.Model)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\n", b.ID, vehicle, b.StartDate, b.EndDate, b.TotalAmount, b.Status)
	}
	return w.Flush()
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseDates(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := pricing.ParseDate(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := pricing.ParseDate(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

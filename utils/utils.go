package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"encoding/base64"

	"github.com/fatih/structs"
	"github.com/tantralabs/mantra/logger"
	"github.com/tantralabs/mantra/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
)

func LoadENV(isSecret bool) {
	if isSecret {
		secretFile := getSecret("ENVIRONMENT_VARIABLES")
		secret := make(map[string]interface{})
		json.Unmarshal([]byte(secretFile), &secret)
		for key, value := range secret {
			log.Println("Setting ENV:", key)
			os.Setenv(key, value.(string))
		}
	}
}

func getSecret(secretName string) string {
	svc := secretsmanager.New(session.New(), aws.NewConfig().WithRegion("us-west-1"))
	input := &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretName),
		VersionStage: aws.String("AWSCURRENT"),
	}

	result, err := svc.GetSecretValue(input)
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			switch aerr.Code() {
			case secretsmanager.ErrCodeDecryptionFailure:
				fmt.Println(secretsmanager.ErrCodeDecryptionFailure, aerr.Error())
			case secretsmanager.ErrCodeInternalServiceError:
				fmt.Println(secretsmanager.ErrCodeInternalServiceError, aerr.Error())
			case secretsmanager.ErrCodeInvalidParameterException:
				fmt.Println(secretsmanager.ErrCodeInvalidParameterException, aerr.Error())
			case secretsmanager.ErrCodeInvalidRequestException:
				fmt.Println(secretsmanager.ErrCodeInvalidRequestException, aerr.Error())
			case secretsmanager.ErrCodeResourceNotFoundException:
				fmt.Println(secretsmanager.ErrCodeResourceNotFoundException, aerr.Error())
			}
		} else {
			fmt.Println(err.Error())
		}
		fmt.Println(err.Error())
		return "error"
	}

	// Depending on whether the secret is a string or binary, one of these
	// fields will be populated.
	var secretString, decodedBinarySecret string
	if result.SecretString != nil {
		secretString = *result.SecretString
		return secretString
	} else {
		decodedBinarySecretBytes := make([]byte, base64.StdEncoding.DecodedLen(len(result.SecretBinary)))
		len, err := base64.StdEncoding.Decode(decodedBinarySecretBytes, result.SecretBinary)
		if err != nil {
			fmt.Println("Base64 Decode Error:", err)
			return "error"
		}
		decodedBinarySecret = string(decodedBinarySecretBytes[:len])
		return decodedBinarySecret
	}
}

// LoadSecret Load a secret file containing sensitive information from a local
// json file or from an amazon secrets file
func LoadSecret(file string, cloud bool) models.Secret {
	var secret models.Secret
	if cloud {
		secretFile := getSecret(file)
		secret = models.Secret{}
		json.Unmarshal([]byte(secretFile), &secret)
		return secret
	} else {
		fmt.Printf("Loading secret from file: %v\n", file)
		secretFile, err := os.Open(file)
		defer secretFile.Close()
		if err != nil {
			log.Println(err.Error())
		}
		jsonParser := json.NewDecoder(secretFile)
		jsonParser.Decode(&secret)
		return secret
	}
}

// ConstrainFloat Limit a float to min, max, and decimal places
func ConstrainFloat(x float64, min float64, max float64, decimals int) float64 {
	return ToFixed(math.Max(min, math.Min(x, max)), decimals)
}

// GetOHLCV Break down the bars into open, high, low, close arrays that are easier to manipulate.
func GetOHLCV(bars []*models.Bar) (ohlcv models.OHLCV) {
	ohlcv = models.OHLCV{
		Open:   make([]float64, len(bars)),
		High:   make([]float64, len(bars)),
		Low:    make([]float64, len(bars)),
		Close:  make([]float64, len(bars)),
		Volume: make([]float64, len(bars)),
	}

	for i := range bars {
		ohlcv.Open[i] = bars[i].Open
		ohlcv.High[i] = bars[i].High
		ohlcv.Low[i] = bars[i].Low
		ohlcv.Close[i] = bars[i].Close
		ohlcv.Volume[i] = bars[i].Volume
	}
	return
}

func TimestampToTime(timestamp int) time.Time {
	timeInt, err := strconv.ParseInt(strconv.Itoa(timestamp/1000), 10, 64)
	if err != nil {
		panic(err)
	}
	return time.Unix(timeInt, 0).UTC()
}

func TimeToTimestamp(timeObject time.Time) int {
	return int(timeObject.UnixNano() / 1000000)
}

func ReverseBars(a []*models.Bar) []*models.Bar {
	for i := len(a)/2 - 1; i >= 0; i-- {
		opp := len(a) - 1 - i
		a[i], a[opp] = a[opp], a[i]
	}
	return a
}

// Arange Build the inclusive grid [min, min+step, ..., max].
func Arange(min float64, max float64, step float64) []float64 {
	a := make([]float64, int32((max-min)/step)+1)
	for i := range a {
		a[i] = min + (float64(i) * step)
	}
	return a
}

func CalculateDifference(x float64, y float64) float64 {
	// Get percentage difference between 2 numbers
	if y == 0 {
		y = 1
	}
	return (x - y) / y
}

// CreateKeyValuePairs make a string interface human readable
func CreateKeyValuePairs(m map[string]interface{}, ignoreLowerCase bool, oldBytes ...*bytes.Buffer) string {
	var b *bytes.Buffer
	if len(oldBytes) > 0 {
		b = oldBytes[0]
	} else {
		b = new(bytes.Buffer)
	}
	fmt.Fprint(b, "\n{\n")
	for key, value := range m {
		firstLetter := string(key[0])
		upperCaseFirstLetter := strings.ToUpper(firstLetter)
		if !ignoreLowerCase || upperCaseFirstLetter == firstLetter {
			rv := reflect.ValueOf(value)
			if rv.Kind() == reflect.Struct {
				fmt.Fprint(b, " ", key, ": ")
				CreateKeyValuePairs(structs.Map(value), ignoreLowerCase, b)
			} else {
				fmt.Fprint(b, " ", key, ": ", value, ",\n")
			}
		}
	}
	fmt.Fprint(b, "}\n")
	return b.String()
}

func round(num float64) int {
	return int(num + math.Copysign(0.5, num))
}

func ToFixed(num float64, precision int) float64 {
	output := math.Pow(10, float64(precision))
	return float64(round(num*output)) / output
}

func RoundToNearest(num float64, interval float64) float64 {
	return math.Round(num/interval) * interval
}

func AdjustForSlippage(price float64, side string, slippage float64) float64 {
	adjPrice := price
	if side == "buy" {
		adjPrice = price * (1. + slippage)
		logger.Debugf("Price %v, with slippage %v\n", price, adjPrice)
	} else if side == "sell" {
		adjPrice = price * (1. - slippage)
		logger.Debugf("Price %v, with slippage %v\n", price, adjPrice)
	}
	return adjPrice
}

// GetOptionSymbol Build the listing symbol for a simulated option,
// ex. SIM-100-45-C for a 100 strike call expiring on tick 45.
func GetOptionSymbol(underlying string, strike float64, expiryTick int, optionType string) string {
	var oType string
	if optionType == "call" {
		oType = "C"
	} else if optionType == "put" {
		oType = "P"
	}
	return underlying + "-" + strconv.Itoa(int(strike)) + "-" + strconv.Itoa(expiryTick) + "-" + oType
}

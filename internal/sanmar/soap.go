package sanmar

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/httpclient"
)

const (
	nsSoapEnv = "http://schemas.xmlsoap.org/soap/envelope/"
	nsImpl    = "http://impl.webservice.integration.sanmar.com/"

	nsInventory       = "http://www.promostandards.org/WSDL/Inventory/2.0.0/"
	nsInventoryShared = "http://www.promostandards.org/WSDL/Inventory/2.0.0/SharedObjects/"
	nsPPC             = "http://www.promostandards.org/WSDL/PricingAndConfiguration/1.0.0/"
	nsPPCShared       = "http://www.promostandards.org/WSDL/PricingAndConfiguration/1.0.0/SharedObjects/"
)

// requestEnvelope marshals with literal prefixes; namespaces are declared on the root.
type requestEnvelope struct {
	XMLName xml.Name   `xml:"soapenv:Envelope"`
	SoapEnv string     `xml:"xmlns:soapenv,attr"`
	Attrs   []xml.Attr `xml:",any,attr"`
	Header  struct{}   `xml:"soapenv:Header"`
	Body    struct {
		Payload any
	} `xml:"soapenv:Body"`
}

// responseEnvelope decodes by local name so any prefix the server picks works.
type responseEnvelope[T any] struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault   *soapFault `xml:"Fault"`
		Payload T          `xml:",any"`
	} `xml:"Body"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

func nsAttr(prefix, uri string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: "xmlns:" + prefix}, Value: uri}
}

func buildEnvelope(payload any, namespaces ...xml.Attr) ([]byte, error) {
	env := requestEnvelope{SoapEnv: nsSoapEnv, Attrs: namespaces}
	env.Body.Payload = payload
	out, err := xml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal soap envelope: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// parseFault extracts a SOAP fault from a raw body, if one is present.
func parseFault(body []byte) *FaultError {
	var env responseEnvelope[struct{}]
	if err := xml.Unmarshal(body, &env); err != nil || env.Body.Fault == nil {
		return nil
	}
	return &FaultError{Code: env.Body.Fault.Code, Message: env.Body.Fault.String}
}

// call posts one SOAP request and decodes the body payload into T.
func call[T any](ctx context.Context, c *Client, endpoint, action string, payload any, namespaces ...xml.Attr) (*T, error) {
	body, err := buildEnvelope(payload, namespaces...)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", action)

	raw, err := c.exec.Do(ctx, req, rateKey)
	if err != nil {
		var se *httpclient.StatusError
		if errors.As(err, &se) {
			if fault := parseFault(se.Body); fault != nil {
				return nil, fault
			}
		}
		return nil, err
	}

	var env responseEnvelope[T]
	if err := xml.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("sanmar.decode_failed",
			zap.String("action", action),
			zap.Error(err))
		return nil, fmt.Errorf("decode %s response: %w", action, err)
	}
	if env.Body.Fault != nil {
		return nil, &FaultError{Code: env.Body.Fault.Code, Message: env.Body.Fault.String}
	}
	return &env.Body.Payload, nil
}

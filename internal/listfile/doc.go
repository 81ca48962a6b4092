// Package listfile loads and saves the entry list.
//
// The XML layout is the one earlier versions of the tool wrote:
//
//	<Files>
//	  <File>
//	    <No>1</No>
//	    <FileName>/photos/a.jpg</FileName>
//	    <HasPayload>true</HasPayload>
//	    <PayloadFileName>/docs/a.txt</PayloadFileName>
//	    <GeneratedPayloadFileName>/photos/a_payload.jpg</GeneratedPayloadFileName>
//	    <Uploaded>false</Uploaded>
//	    <Description></Description>
//	  </File>
//	</Files>
//
// Files ending in .yaml or .yml carry the same fields in YAML. The stored
// number is ignored on load; entries are renumbered in document order.
package listfile
